package addons

import (
	"errors"

	"github.com/imamik/k8zenv/internal/addons/helm"
	"github.com/imamik/k8zenv/internal/config"
)

const lokiInClusterURL = "http://loki.logging.svc.cluster.local:3100"

func plecoChart(p *ChartsPrerequisites) helm.ChartInfo {
	return helm.ChartInfo{
		Name:        "pleco",
		Path:        p.chartPath("common/charts/pleco"),
		Namespace:   NamespaceKubeSystem,
		ValuesFiles: []string{p.chartPath("chart_values/pleco-aws.yaml")},
		Values: []helm.SetValue{
			setString("environmentVariables.AWS_ACCESS_KEY_ID", p.AWSAccessKeyID),
			setString("environmentVariables.AWS_SECRET_ACCESS_KEY", p.AWSSecretAccessKey),
			setString("environmentVariables.PLECO_IDENTIFIER", p.ClusterID),
			setString("environmentVariables.LOG_LEVEL", "debug"),
		},
	}
}

// qoveryAgentChart removes the agent the cluster agent replaced.
func qoveryAgentChart(p *ChartsPrerequisites) helm.ChartInfo {
	return helm.ChartInfo{
		Name:      "qovery-agent",
		Path:      p.chartPath("common/charts/qovery/qovery-agent"),
		Namespace: NamespaceQovery,
		Action:    helm.ActionDestroy,
	}
}

func agentValues(p *ChartsPrerequisites, version string) []helm.SetValue {
	return []helm.SetValue{
		setString("image.tag", version),
		setString("replicaCount", "1"),
		setString("environmentVariables.GRPC_SERVER", p.Infra.GRPCURL),
		setString("environmentVariables.CLUSTER_JWT_TOKEN", p.Infra.JWTToken),
		setString("environmentVariables.CLUSTER_ID", p.ClusterLongID.String()),
		setString("environmentVariables.ORGANIZATION_ID", p.OrganizationLongID.String()),
	}
}

func clusterAgentChart(p *ChartsPrerequisites) helm.ChartInfo {
	values := agentValues(p, p.Infra.ClusterAgentVersion)
	if p.FFLogHistoryEnabled {
		values = append(values, setString("environmentVariables.LOKI_URL", lokiInClusterURL))
	}
	values = append(values, resources("resources", "1", "200m", "500Mi", "500Mi")...)

	return helm.ChartInfo{
		Name:      "cluster-agent",
		Path:      p.chartPath("common/charts/qovery/qovery-cluster-agent"),
		Namespace: NamespaceQovery,
		Values:    values,
	}
}

func shellAgentChart(p *ChartsPrerequisites) helm.ChartInfo {
	return helm.ChartInfo{
		Name:      "shell-agent",
		Path:      p.chartPath("common/charts/qovery/qovery-shell-agent"),
		Namespace: NamespaceQovery,
		Values: withResources(agentValues(p, p.Infra.ShellAgentVersion),
			resources("resources", "1", "200m", "500Mi", "500Mi")),
	}
}

// engineAction installs the engine only when it runs inside the cluster.
func engineAction(location string) helm.Action {
	if location == config.EngineLocationClusterSide {
		return helm.ActionInstall
	}
	return helm.ActionDestroy
}

func qoveryEngineChart(p *ChartsPrerequisites) (helm.ChartInfo, error) {
	action := engineAction(p.EngineLocation)
	if action == helm.ActionInstall && p.Infra.EngineVersion == "" {
		return helm.ChartInfo{}, errors.New("engine version is required when the engine runs in the cluster")
	}

	values := []helm.SetValue{
		setString("image.tag", p.Infra.EngineVersion),
		set("autoscaler.min_replicas", "1"),
		setBool("metrics.enabled", p.FFMetricsHistoryEnabled),
		set("volumes.storageClassName", "aws-ebs-gp2-0"),
		setString("environmentVariables.QOVERY_NATS_URL", p.Infra.NATSURL),
		setString("environmentVariables.QOVERY_NATS_USER", p.Infra.NATSUser),
		setString("environmentVariables.QOVERY_NATS_PASSWORD", p.Infra.NATSPassword),
		setString("environmentVariables.ORGANIZATION", p.OrganizationID),
		setString("environmentVariables.CLOUD_PROVIDER", p.CloudProvider),
		setString("environmentVariables.REGION", p.Region),
		setString("environmentVariables.LIB_ROOT_DIR", "/home/qovery/lib"),
		setString("environmentVariables.DOCKER_HOST", "tcp://0.0.0.0:2375"),
	}
	values = append(values, resources("engineResources", "1", "500m", "512Mi", "512Mi")...)
	values = append(values, resources("buildResources", "1", "500m", "4Gi", "4Gi")...)

	return helm.ChartInfo{
		Name:           "qovery-engine",
		Path:           p.chartPath("common/charts/qovery-engine"),
		Namespace:      NamespaceQovery,
		Action:         action,
		TimeoutSeconds: 900,
		Values:         values,
	}, nil
}
