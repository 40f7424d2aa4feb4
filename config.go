package grace

import "github.com/magiconair/properties"

// Config carries the handful of driver-level knobs Grace itself has no
// syntax for. Precedence, poorest to strongest: built-in defaults, an
// optional .graceconfig properties file, then CLI flags (applied by
// cmd/gracec after loading a Config here).
type Config struct {
	TargetTriple   string
	OptLevel       int
	RuntimeArchive string
}

// DefaultConfig matches spec.md §6's unchanged external contract: the
// one triple the runtime library is built for, and the per-function
// optimisation pipeline of §4.4 step 10 turned on.
func DefaultConfig() Config {
	return Config{
		TargetTriple: "x86_64-pc-linux-gnu",
		OptLevel:     1,
	}
}

// LoadConfig reads a Java-properties-style .graceconfig file, applying
// any of its three recognised keys on top of the built-in defaults.
// Keys absent from the file keep their default value. A path that
// cannot be loaded, including a missing file, is an error; cmd/gracec
// calls LoadConfig only when --config is given and uses DefaultConfig
// otherwise.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	props, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return Config{}, NewError(Pos{Filename: path}, "loading config: %s", err)
	}
	cfg.TargetTriple = props.GetString("target-triple", cfg.TargetTriple)
	cfg.OptLevel = props.GetInt("opt-level", cfg.OptLevel)
	cfg.RuntimeArchive = props.GetString("runtime-archive", cfg.RuntimeArchive)
	return cfg, nil
}
