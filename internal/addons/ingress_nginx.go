package addons

import "github.com/imamik/k8zenv/internal/addons/helm"

func nginxIngressChart(p *ChartsPrerequisites) helm.ChartInfo {
	values := []helm.SetValue{
		set("controller.admissionWebhooks.enabled", "false"),
	}
	values = append(values, resources("controller.resources", "200m", "100m", "768Mi", "768Mi")...)
	values = append(values, resources("defaultBackend.resources", "20m", "10m", "32Mi", "32Mi")...)

	return helm.ChartInfo{
		Name:      "nginx-ingress",
		Path:      p.chartPath("common/charts/ingress-nginx"),
		Namespace: NamespaceNginxIngress,
		// the load balancer service can take a while to get an address
		TimeoutSeconds: 300,
		ValuesFiles:    []string{p.chartPath("chart_values/nginx-ingress.yaml")},
		Values:         values,
	}
}
