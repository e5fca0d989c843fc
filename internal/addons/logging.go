package addons

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/imamik/k8zenv/internal/addons/helm"
)

const lokiChartName = "loki"

func promtailChart(p *ChartsPrerequisites) helm.ChartInfo {
	return helm.ChartInfo{
		Name:                                "promtail",
		Path:                                p.chartPath("common/charts/promtail"),
		LastBreakingVersionRequiringRestart: semver.New(5, 1, 0, "", ""),
		ValuesFiles:                         []string{p.chartPath("chart_values/promtail.yaml")},
		// kube-system for the priority class
		Namespace: NamespaceKubeSystem,
		Values: withResources([]helm.SetValue{
			set("config.clients[0].url", fmt.Sprintf("http://%s.%s.svc:3100/loki/api/v1/push", lokiChartName, NamespaceLogging)),
			set("priorityClassName", "system-node-critical"),
		}, resources("resources", "100m", "100m", "128Mi", "128Mi")),
	}
}

func lokiChart(p *ChartsPrerequisites, tf *TerraformConfig, opts *Options) (helm.ChartInfo, error) {
	retention := fmt.Sprintf("%dw", p.Advanced.LokiRetentionWeeks)

	c := helm.ChartInfo{
		Name:           lokiChartName,
		Path:           p.chartPath("common/charts/loki"),
		Namespace:      NamespaceLogging,
		TimeoutSeconds: 900,
		ValuesFiles:    []string{p.chartPath("chart_values/loki.yaml")},
		Values: withResources([]helm.SetValue{
			set("config.chunk_store_config.max_look_back_period", retention),
			set("config.table_manager.retention_period", retention),
			setString("config.storage_config.aws.s3", tf.LokiStorageConfigAWSS3),
			set("config.storage_config.aws.region", p.Region),
			setString("aws_iam_loki_storage_key", tf.AWSIAMLokiStorageKey),
			setString("aws_iam_loki_storage_secret", tf.AWSIAMLokiStorageSecret),
			set("config.storage_config.aws.sse_encryption", "true"),
		}, resources("resources", "1", "300m", "2Gi", "1Gi")),
	}

	bucket, err := lokiBucketName(tf.LokiStorageConfigAWSS3)
	if err != nil {
		return helm.ChartInfo{}, err
	}
	if bucket != "" && opts.Buckets != nil {
		c.PreExec = ensureLokiBucket(p.Region, tf, bucket, opts.Buckets)
	}

	return c, nil
}

// lokiBucketName extracts the bucket from a loki storage URL such as
// s3://key:secret@eu-west-3/bucket. Empty means no bucket is configured.
func lokiBucketName(storage string) (string, error) {
	if storage == "" {
		return "", nil
	}
	u, err := url.Parse(storage)
	if err != nil {
		return "", fmt.Errorf("invalid loki storage config: %w", err)
	}
	bucket, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	return bucket, nil
}

// ensureLokiBucket makes sure the log storage bucket exists, encrypted, before
// loki starts writing chunks.
func ensureLokiBucket(region string, tf *TerraformConfig, bucket string, newBuckets BucketFactory) helm.PreExecHook {
	return func(ctx context.Context) error {
		buckets, err := newBuckets(ctx, region, tf.AWSIAMLokiStorageKey, tf.AWSIAMLokiStorageSecret)
		if err != nil {
			return fmt.Errorf("failed to create log storage client: %w", err)
		}
		if err := buckets.EnsureBucket(ctx, bucket); err != nil {
			return fmt.Errorf("failed to ensure log storage bucket %s: %w", bucket, err)
		}
		return nil
	}
}
