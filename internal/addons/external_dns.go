package addons

import "github.com/imamik/k8zenv/internal/addons/helm"

func externalDNSChart(p *ChartsPrerequisites) helm.ChartInfo {
	return helm.ChartInfo{
		Name:        "externaldns",
		Path:        p.chartPath("common/charts/external-dns"),
		Namespace:   NamespaceKubeSystem,
		ValuesFiles: []string{p.chartPath("chart_values/external-dns.yaml")},
		Values: withResources([]helm.SetValue{
			set("provider", p.ExternalDNSProvider),
			setString("domainFilters[0]", p.ManagedDNSName),
			setString("txtOwnerId", p.ClusterID),
		}, resources("resources", "50m", "50m", "50Mi", "50Mi")),
	}
}
