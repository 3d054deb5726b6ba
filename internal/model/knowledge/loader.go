package knowledge

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadFile reads knowledge from a YAML, JSON or TOML file. The file format is
// picked from the extension. A file without a profile keeps the default one.
func LoadFile(path string) (Knowledge, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Knowledge{}, fmt.Errorf("read knowledge file %s: %w", path, err)
	}

	var k Knowledge
	if err := v.Unmarshal(&k); err != nil {
		return Knowledge{}, fmt.Errorf("decode knowledge file %s: %w", path, err)
	}

	if !v.IsSet("profile") {
		k.Profile = Default().Profile
	}

	if err := k.Validate(); err != nil {
		return Knowledge{}, fmt.Errorf("invalid knowledge file %s: %w", path, err)
	}
	return k, nil
}

// Resolve returns the knowledge from path, or the built-in default when path is empty.
func Resolve(path string) (Knowledge, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
