package addons

import "github.com/imamik/k8zenv/internal/addons/helm"

const prometheusOperatorCRDsURL = "https://raw.githubusercontent.com/prometheus-operator/prometheus-operator/v0.56.0/example/prometheus-operator-crd"

// prometheusOperatorCRDs are re-applied on every install since helm leaves
// CRDs untouched on upgrade.
func prometheusOperatorCRDs() *helm.CRDsUpdate {
	return &helm.CRDsUpdate{
		BaseURL: prometheusOperatorCRDsURL,
		Files: []string{
			"monitoring.coreos.com_alertmanagerconfigs.yaml",
			"monitoring.coreos.com_alertmanagers.yaml",
			"monitoring.coreos.com_podmonitors.yaml",
			"monitoring.coreos.com_probes.yaml",
			"monitoring.coreos.com_prometheuses.yaml",
			"monitoring.coreos.com_prometheusrules.yaml",
			"monitoring.coreos.com_servicemonitors.yaml",
			"monitoring.coreos.com_thanosrulers.yaml",
		},
	}
}
