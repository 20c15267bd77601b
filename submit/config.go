package submit

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/DataWorkbench/paimonweb/qerror"
)

// Keys recognized in a submission configuration map.
const (
	KeyUserJarPath      = "userJarPath"
	KeyUserJarParams    = "userJarParams"
	KeyUserJarMainClass = "userJarMainAppClass"
	KeyJobMemory        = "jobMemory"
	KeyTaskMemory       = "taskMemory"
	KeyFlinkConfigPath  = "flinkConfigPath"
	KeyHadoopConfigPath = "hadoopConfigPath"
)

type JobConfig struct {
	UserJarPath      string   `json:"userJarPath"         yaml:"userJarPath"         validate:"required"`
	UserJarParams    []string `json:"userJarParams"       yaml:"userJarParams"`
	MainAppClass     string   `json:"userJarMainAppClass" yaml:"userJarMainAppClass" validate:"required"`
	JobMemory        string   `json:"jobMemory"           yaml:"jobMemory"`
	TaskMemory       string   `json:"taskMemory"          yaml:"taskMemory"`
	FlinkConfigPath  string   `json:"flinkConfigPath"     yaml:"flinkConfigPath"`
	HadoopConfigPath string   `json:"hadoopConfigPath"    yaml:"hadoopConfigPath"`
}

var validate = validator.New()

// ParseJobConfig reads the recognized keys of m. userJarParams is split on
// whitespace.
func ParseJobConfig(m map[string]string) (*JobConfig, error) {
	cfg := &JobConfig{
		UserJarPath:      strings.TrimSpace(m[KeyUserJarPath]),
		UserJarParams:    strings.Fields(m[KeyUserJarParams]),
		MainAppClass:     strings.TrimSpace(m[KeyUserJarMainClass]),
		JobMemory:        strings.TrimSpace(m[KeyJobMemory]),
		TaskMemory:       strings.TrimSpace(m[KeyTaskMemory]),
		FlinkConfigPath:  strings.TrimSpace(m[KeyFlinkConfigPath]),
		HadoopConfigPath: strings.TrimSpace(m[KeyHadoopConfigPath]),
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, qerror.InvalidJobConfig.Format(err.Error())
	}
	return cfg, nil
}

// ClusterSpecification converts the memory sizing; an empty value keeps
// the platform default.
func (cfg *JobConfig) ClusterSpecification() (spec ClusterSpecification, err error) {
	if cfg.JobMemory != "" {
		if spec.MasterMemoryMB, err = ParseMemoryMB(KeyJobMemory, cfg.JobMemory); err != nil {
			return
		}
	}
	if cfg.TaskMemory != "" {
		if spec.TaskManagerMemoryMB, err = ParseMemoryMB(KeyTaskMemory, cfg.TaskMemory); err != nil {
			return
		}
	}
	return
}

func (cfg *JobConfig) ApplicationConfiguration() ApplicationConfiguration {
	return ApplicationConfiguration{
		UserJars:         []string{cfg.UserJarPath},
		MainClass:        cfg.MainAppClass,
		ProgramArguments: cfg.UserJarParams,
	}
}
