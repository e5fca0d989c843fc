package addons

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/imamik/k8zenv/internal/addons/helm"
)

var prometheusInternalURL = fmt.Sprintf("http://prometheus-operated.%s.svc", NamespacePrometheus)

func kubePrometheusStackChart(p *ChartsPrerequisites) helm.ChartInfo {
	values := []helm.SetValue{
		set("installCRDs", "true"),
		set("nameOverride", "prometheus-operator"),
		set("fullnameOverride", "prometheus-operator"),
		set("prometheus.prometheusSpec.externalUrl", prometheusInternalURL),
		set("prometheusOperator.tls.enabled", "false"),
		set("prometheusOperator.admissionWebhooks.enabled", "false"),
		set("prometheus-node-exporter.prometheus.monitor.enabled", "false"),
		set("grafana.serviceMonitor.enabled", "false"),
		set("kubelet.serviceMonitor.resource", "true"),
		set("kubelet.serviceMonitor.resourcePath", "/metrics/resource"),
	}
	values = append(values, resources("prometheus-node-exporter.resources", "20m", "10m", "32Mi", "32Mi")...)
	values = append(values, resources("prometheusOperator.resources", "1", "500m", "1Gi", "1Gi")...)

	return helm.ChartInfo{
		Name:      "kube-prometheus-stack",
		Path:      p.chartPath("/common/charts/kube-prometheus-stack"),
		Namespace: NamespacePrometheus,
		// one of the biggest charts, upgrades also replace the CRDs
		TimeoutSeconds: 480,
		CRDsUpdate:     prometheusOperatorCRDs(),
		ValuesFiles:    []string{p.chartPath("chart_values/kube-prometheus-stack.yaml")},
		Values:         values,
	}
}

func prometheusAdapterChart(p *ChartsPrerequisites) helm.ChartInfo {
	return helm.ChartInfo{
		Name:                                "prometheus-adapter",
		Path:                                p.chartPath("common/charts/prometheus-adapter"),
		Namespace:                           NamespacePrometheus,
		LastBreakingVersionRequiringRestart: semver.New(3, 3, 1, "", ""),
		Values: withResources([]helm.SetValue{
			set("metricsRelistInterval", "30s"),
			set("prometheus.url", prometheusInternalURL),
			set("podDisruptionBudget.enabled", "true"),
			set("podDisruptionBudget.maxUnavailable", "1"),
		}, resources("resources", "250m", "250m", "384Mi", "384Mi")),
	}
}

func kubeStateMetricsChart(p *ChartsPrerequisites) helm.ChartInfo {
	return helm.ChartInfo{
		Name:                                "kube-state-metrics",
		Path:                                p.chartPath("common/charts/kube-state-metrics"),
		Namespace:                           NamespacePrometheus,
		LastBreakingVersionRequiringRestart: semver.New(4, 6, 0, "", ""),
		Values: withResources([]helm.SetValue{
			set("prometheus.monitor.enabled", "true"),
		}, resources("resources", "75m", "75m", "384Mi", "384Mi")),
	}
}

// grafanaDatasources renders the generated values file wiring grafana to
// prometheus, loki and cloudwatch.
func grafanaDatasources(p *ChartsPrerequisites, tf *TerraformConfig) (string, error) {
	lokiURL := fmt.Sprintf("http://%s.%s.svc:3100", lokiChartName, NamespaceLogging)

	values := helm.Values{
		"datasources": helm.Values{
			"datasources.yaml": helm.Values{
				"apiVersion": 1,
				"datasources": []helm.Values{
					{
						"name":      "Prometheus",
						"type":      "prometheus",
						"url":       prometheusInternalURL + ":9090",
						"access":    "proxy",
						"isDefault": true,
					},
					{
						"name":      "PromLoki",
						"type":      "prometheus",
						"url":       lokiURL + "/loki",
						"access":    "proxy",
						"isDefault": false,
					},
					{
						"name": "Loki",
						"type": "loki",
						"url":  lokiURL,
					},
					{
						"name": "Cloudwatch",
						"type": "cloudwatch",
						"jsonData": helm.Values{
							"authType":      "keys",
							"defaultRegion": p.Region,
						},
						"secureJsonData": helm.Values{
							"accessKey": tf.AWSIAMCloudwatchKey,
							"secretKey": tf.AWSIAMCloudwatchSecret,
						},
					},
				},
			},
		},
	}

	data, err := values.ToYAML()
	if err != nil {
		return "", fmt.Errorf("failed to render grafana datasources: %w", err)
	}
	return string(data), nil
}

func grafanaChart(p *ChartsPrerequisites, tf *TerraformConfig) (helm.ChartInfo, error) {
	datasources, err := grafanaDatasources(p, tf)
	if err != nil {
		return helm.ChartInfo{}, err
	}

	return helm.ChartInfo{
		Name:        "grafana",
		Path:        p.chartPath("common/charts/grafana"),
		Namespace:   NamespacePrometheus,
		ValuesFiles: []string{p.chartPath("chart_values/grafana.yaml")},
		GeneratedValues: []helm.GeneratedValuesFile{
			{Filename: "grafana_generated.yaml", Content: datasources},
		},
	}, nil
}
