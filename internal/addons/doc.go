// Package addons assembles the leveled install plan of the cluster charts.
//
// [BuildLevels] loads the Terraform output, builds every chart with its
// resolved values and groups the charts into seven levels. Levels are applied
// strictly in order by helm.Deployer; charts inside a level have no ordering
// between them. Optional charts are added by feature flags:
//   - metrics history: kube-prometheus-stack, prometheus-adapter, kube-state-metrics
//   - log history: promtail, loki
//   - either flag: grafana
//   - managed DNS provider: the cert-manager webhook
//   - pleco unless disabled
package addons
