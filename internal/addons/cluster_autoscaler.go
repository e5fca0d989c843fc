package addons

import "github.com/imamik/k8zenv/internal/addons/helm"

func clusterAutoscalerChart(p *ChartsPrerequisites, tf *TerraformConfig) helm.ChartInfo {
	return helm.ChartInfo{
		Name:      "cluster-autoscaler",
		Path:      p.chartPath("common/charts/cluster-autoscaler"),
		Namespace: NamespaceKubeSystem,
		Values: withResources([]helm.SetValue{
			set("cloudProvider", p.CloudProvider),
			set("awsRegion", p.Region),
			setString("autoDiscovery.clusterName", p.ClusterName),
			setString("awsAccessKeyID", tf.AWSIAMClusterAutoscalerKey),
			setString("awsSecretAccessKey", tf.AWSIAMClusterAutoscalerSecret),
			// paused infra must come back in order on restore
			set("priorityClassName", "system-cluster-critical"),
			set("extraArgs.balance-similar-node-groups", "true"),
			setBool("serviceMonitor.enabled", p.FFMetricsHistoryEnabled),
			set("serviceMonitor.namespace", NamespacePrometheus),
		}, resources("resources", "100m", "100m", "640Mi", "640Mi")),
	}
}
