package addons

import "github.com/imamik/k8zenv/internal/addons/helm"

func metricsServerChart(p *ChartsPrerequisites) helm.ChartInfo {
	return helm.ChartInfo{
		Name:        "metrics-server",
		Path:        p.chartPath("common/charts/metrics-server"),
		Namespace:   NamespaceKubeSystem,
		ValuesFiles: []string{p.chartPath("chart_values/metrics-server.yaml")},
		Values:      resources("resources", "250m", "250m", "256Mi", "256Mi"),
	}
}
