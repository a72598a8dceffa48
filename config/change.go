package config

import (
	"strconv"
	"strings"
)

// field reads one setting as text for change detection.
type field struct {
	name       string
	reloadable bool
	value      func(*Config) string
}

// fields lists every comparable setting. Reloadable ones take effect on the
// next generation run; the rest are read once at startup.
var fields = []field{
	{"output.base_path", true, func(c *Config) string { return c.Output.BasePath }},
	{"output.extension", true, func(c *Config) string { return c.Output.Extension }},
	{"output.clean", true, func(c *Config) string { return strconv.FormatBool(c.Output.ShouldClean()) }},
	{"logging.level", true, func(c *Config) string { return c.Logging.Level }},
	{"logging.format", true, func(c *Config) string { return c.Logging.Format }},
	{"server.host", false, func(c *Config) string { return c.Server.Host }},
	{"server.port", false, func(c *Config) string { return strconv.Itoa(c.Server.Port) }},
	{"server.shutdown_timeout", false, func(c *Config) string { return c.Server.ShutdownTimeout.String() }},
	{"metrics.enabled", false, func(c *Config) string { return strconv.FormatBool(c.Metrics.Enabled) }},
	{"metrics.path", false, func(c *Config) string { return c.Metrics.Path }},
	{"metrics.prefix", false, func(c *Config) string { return c.Metrics.Prefix }},
}

// ReloadableFields returns which fields take effect on the next generation
// run without a restart.
func ReloadableFields() []string {
	return fieldNames(true)
}

// NonReloadableFields returns which fields require a restart.
func NonReloadableFields() []string {
	return fieldNames(false)
}

func fieldNames(reloadable bool) []string {
	var names []string
	for _, f := range fields {
		if f.reloadable == reloadable {
			names = append(names, f.name)
		}
	}
	return names
}

// FieldChange is one setting that differs between two configurations.
type FieldChange struct {
	Name       string
	Old, New   string
	Reloadable bool
}

// Change describes a successful reload.
type Change struct {
	Old, New *Config
	Fields   []FieldChange
}

// Diff compares two configurations field by field.
func Diff(old, new *Config) Change {
	c := Change{Old: old, New: new}
	for _, f := range fields {
		o, n := f.value(old), f.value(new)
		if o != n {
			c.Fields = append(c.Fields, FieldChange{Name: f.name, Old: o, New: n, Reloadable: f.reloadable})
		}
	}
	return c
}

// Empty reports whether no setting changed.
func (c Change) Empty() bool { return len(c.Fields) == 0 }

// Touches reports whether any changed field lies in the given section,
// e.g. "output" or "logging".
func (c Change) Touches(section string) bool {
	for _, f := range c.Fields {
		if strings.HasPrefix(f.Name, section+".") {
			return true
		}
	}
	return false
}

// RestartRequired returns the changed fields that only apply after a
// restart.
func (c Change) RestartRequired() []string {
	var names []string
	for _, f := range c.Fields {
		if !f.Reloadable {
			names = append(names, f.Name)
		}
	}
	return names
}
