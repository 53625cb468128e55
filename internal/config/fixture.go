package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// environmentFixture mirrors ExecutionEnvironment in a YAML-friendly shape
// for test fixtures (e.g. cmd/typecore-fold/testdata/py312-linux.yaml).
type environmentFixture struct {
	Major               int      `yaml:"major"`
	Minor               int      `yaml:"minor"`
	Platform            string   `yaml:"platform"`
	TypingModuleAliases []string `yaml:"typing_aliases"`
	SysModuleAliases    []string `yaml:"sys_aliases"`
	OsModuleAliases     []string `yaml:"os_aliases"`
}

// LoadEnvironmentFixture reads a YAML environment fixture from path. It
// exists purely to exercise this module's own test suites against
// human-editable fixtures instead of Go literals; it is not a substitute for
// the host's real configuration loading (an explicit non-goal, see spec.md §1).
func LoadEnvironmentFixture(path string) (*ExecutionEnvironment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f environmentFixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &ExecutionEnvironment{
		PythonVersion:       EncodeVersion(f.Major, f.Minor),
		PythonPlatform:      ParsePlatform(f.Platform),
		TypingModuleAliases: f.TypingModuleAliases,
		SysModuleAliases:    f.SysModuleAliases,
		OsModuleAliases:     f.OsModuleAliases,
	}, nil
}
