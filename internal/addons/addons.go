package addons

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/k8zenv/internal/addons/helm"
	"github.com/imamik/k8zenv/internal/addons/k8sclient"
	"github.com/imamik/k8zenv/internal/metrics"
	"github.com/imamik/k8zenv/internal/platform/s3"
)

// LevelCount is the number of levels of the install plan.
const LevelCount = 7

// BucketEnsurer creates a storage bucket when it is missing.
type BucketEnsurer interface {
	EnsureBucket(ctx context.Context, bucketName string) error
}

// BucketFactory returns a bucket client for the given credentials.
type BucketFactory func(ctx context.Context, region, accessKey, secretKey string) (BucketEnsurer, error)

// S3Buckets returns a factory backed by the S3 client.
func S3Buckets(log logr.Logger, opts ...s3.Option) BucketFactory {
	return func(ctx context.Context, region, accessKey, secretKey string) (BucketEnsurer, error) {
		client, err := s3.NewClient(ctx, region, accessKey, secretKey, log, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Options are the collaborators of the charts' pre-exec hooks.
type Options struct {
	// Kube is used to inspect and adopt live resources. Nil builds the plan
	// without reading the cluster and without hooks that need it.
	Kube k8sclient.Client
	// Buckets creates the log storage bucket. Nil skips the loki hook.
	Buckets BucketFactory

	Log     logr.Logger
	Metrics *metrics.Metrics

	// SettlePeriod is the wait after ownership adoption.
	SettlePeriod time.Duration
	// Env holds the env vars in effect, attached to precondition errors.
	Env map[string]string

	// Removal plans for uninstall: the cluster is not read because the
	// values and hooks of a removed unit are never used.
	Removal bool
}

// BuildLevels loads the Terraform output and returns the leveled install
// plan. Deployment order of the levels matters; order inside a level does
// not.
func BuildLevels(ctx context.Context, terraformConfigPath string, p *ChartsPrerequisites, opts Options) ([]helm.Level, error) {
	if p.DNSProvider == nil {
		return nil, fmt.Errorf("dns provider is required")
	}

	tf, err := LoadTerraformConfig(terraformConfigPath, opts.Env)
	if err != nil {
		return nil, err
	}

	vpcCNI, err := vpcCNIChart(ctx, p, &opts)
	if err != nil {
		return nil, err
	}
	engine, err := qoveryEngineChart(p)
	if err != nil {
		return nil, err
	}

	level1 := helm.Level{
		userMapperChart(p, tf),
		storageClassChart(p),
		corednsChart(p),
		vpcCNI,
		awsUIViewChart(p),
	}
	level2 := helm.Level{}
	level3 := helm.Level{certManagerChart(p)}
	level4 := helm.Level{clusterAutoscalerChart(p, tf)}
	level5 := helm.Level{
		metricsServerChart(p),
		nodeTermHandlerChart(p),
		externalDNSChart(p),
	}
	level6 := helm.Level{nginxIngressChart(p)}
	level7 := helm.Level{
		certManagerConfigsChart(p, opts.Kube),
		qoveryAgentChart(p),
		clusterAgentChart(p),
		shellAgentChart(p),
		engine,
	}

	if p.FFMetricsHistoryEnabled {
		level1 = append(level1, kubePrometheusStackChart(p))
		level2 = append(level2, prometheusAdapterChart(p), kubeStateMetricsChart(p))
	}
	if p.FFLogHistoryEnabled {
		loki, err := lokiChart(p, tf, &opts)
		if err != nil {
			return nil, err
		}
		level1 = append(level1, promtailChart(p))
		level2 = append(level2, loki)
	}
	if p.FFMetricsHistoryEnabled || p.FFLogHistoryEnabled {
		grafana, err := grafanaChart(p, tf)
		if err != nil {
			return nil, err
		}
		level2 = append(level2, grafana)
	}

	if dns, ok := p.DNSProvider.(QoveryDNS); ok {
		level4 = append(level4, certManagerWebhookChart(p, dns))
	}

	if !p.DisablePleco {
		level6 = append(level6, plecoChart(p))
	}

	opts.Log.V(1).Info("charts configuration preparation finished",
		"cluster", p.ClusterName,
		"metricsHistory", p.FFMetricsHistoryEnabled,
		"logHistory", p.FFLogHistoryEnabled,
	)

	return []helm.Level{level1, level2, level3, level4, level5, level6, level7}, nil
}

// ChartNames returns the chart names of each level, for plans and logs.
func ChartNames(levels []helm.Level) [][]string {
	names := make([][]string, len(levels))
	for i, level := range levels {
		names[i] = make([]string, 0, len(level))
		for _, c := range level {
			names[i] = append(names[i], c.Name)
		}
	}
	return names
}
