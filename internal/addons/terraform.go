package addons

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/imamik/k8zenv/internal/util/retry"
)

// TerraformConfig is the JSON document Terraform renders after provisioning
// the cluster. It carries the IAM credentials of the charts.
type TerraformConfig struct {
	AWSIAMEKSUserMapperKey        string `json:"aws_iam_eks_user_mapper_key"`
	AWSIAMEKSUserMapperSecret     string `json:"aws_iam_eks_user_mapper_secret"`
	AWSIAMClusterAutoscalerKey    string `json:"aws_iam_cluster_autoscaler_key"`
	AWSIAMClusterAutoscalerSecret string `json:"aws_iam_cluster_autoscaler_secret"`
	AWSIAMCloudwatchKey           string `json:"aws_iam_cloudwatch_key"`
	AWSIAMCloudwatchSecret        string `json:"aws_iam_cloudwatch_secret"`
	LokiStorageConfigAWSS3        string `json:"loki_storage_config_aws_s3"`
	AWSIAMLokiStorageKey          string `json:"aws_iam_loki_storage_key"`
	AWSIAMLokiStorageSecret       string `json:"aws_iam_loki_storage_secret"`
}

// PreconditionError reports input the plan cannot be built without. Message
// is safe to show; Raw and Env may hold secrets.
type PreconditionError struct {
	Message string
	Raw     error
	Env     map[string]string
}

func (e *PreconditionError) Error() string {
	if e.Raw == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Raw)
}

func (e *PreconditionError) Unwrap() error {
	return e.Raw
}

// SafeMessage returns the message without the raw cause or env values.
func (e *PreconditionError) SafeMessage() string {
	return e.Message
}

// EnvNames returns the sorted names of the env vars in effect.
func (e *PreconditionError) EnvNames() []string {
	names := make([]string, 0, len(e.Env))
	for k := range e.Env {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LoadTerraformConfig reads the Terraform output. Failures are fatal: the
// file only exists once Terraform has applied, so retrying cannot help.
func LoadTerraformConfig(path string, env map[string]string) (*TerraformConfig, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, retry.Fatal(&PreconditionError{
			Message: "can't deploy helm charts as the terraform config file has not been rendered by terraform, are you running in dry run mode?",
			Raw:     err,
			Env:     env,
		})
	}

	var cfg TerraformConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, retry.Fatal(&PreconditionError{
			Message: fmt.Sprintf("error while parsing terraform config file %s", path),
			Raw:     err,
			Env:     env,
		})
	}

	if missing := cfg.missingFields(); len(missing) > 0 {
		return nil, retry.Fatal(&PreconditionError{
			Message: fmt.Sprintf("terraform config file %s is missing field(s) %s", path, strings.Join(missing, ", ")),
			Raw:     errors.New("missing field(s) " + strings.Join(missing, ", ")),
			Env:     env,
		})
	}

	return &cfg, nil
}

// missingFields returns the JSON names of the empty fields, in document order.
func (c *TerraformConfig) missingFields() []string {
	fields := []struct {
		name  string
		value string
	}{
		{"aws_iam_eks_user_mapper_key", c.AWSIAMEKSUserMapperKey},
		{"aws_iam_eks_user_mapper_secret", c.AWSIAMEKSUserMapperSecret},
		{"aws_iam_cluster_autoscaler_key", c.AWSIAMClusterAutoscalerKey},
		{"aws_iam_cluster_autoscaler_secret", c.AWSIAMClusterAutoscalerSecret},
		{"aws_iam_cloudwatch_key", c.AWSIAMCloudwatchKey},
		{"aws_iam_cloudwatch_secret", c.AWSIAMCloudwatchSecret},
		{"loki_storage_config_aws_s3", c.LokiStorageConfigAWSS3},
		{"aws_iam_loki_storage_key", c.AWSIAMLokiStorageKey},
		{"aws_iam_loki_storage_secret", c.AWSIAMLokiStorageSecret},
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
