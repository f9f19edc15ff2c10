package command

// Overrides carries user-supplied adjustments to a built command: a
// replacement executable, arguments to prepend or append, and the name of
// an environment profile to inject at spawn time. Overrides are applied as
// the last step before resolution.
type Overrides struct {
	Executable  string   `yaml:"executable,omitempty" json:"executable,omitempty"`
	PrependArgs []string `yaml:"prepend_args,omitempty" json:"prepend_args,omitempty"`
	AppendArgs  []string `yaml:"append_args,omitempty" json:"append_args,omitempty"`
	EnvProfile  string   `yaml:"env_profile,omitempty" json:"env_profile,omitempty"`
}

// IsZero reports whether no override is set.
func (o Overrides) IsZero() bool {
	return o.Executable == "" && len(o.PrependArgs) == 0 && len(o.AppendArgs) == 0 && o.EnvProfile == ""
}

// ApplyOverrides returns a builder with the overrides applied. Prepended
// arguments land ahead of the builder's existing parameters, appended ones
// after; the executable replaces the base command when set.
func ApplyOverrides(b Builder, o Overrides) Builder {
	if o.Executable != "" {
		b = b.WithBase(o.Executable)
	}
	if len(o.PrependArgs) > 0 {
		prefixed := NewBuilder(b.base, o.PrependArgs...)
		b = prefixed.ExtendParams(b.params...)
	}
	if len(o.AppendArgs) > 0 {
		b = b.ExtendParams(o.AppendArgs...)
	}
	return b
}
