package addons

import (
	"context"
	"fmt"

	"github.com/imamik/k8zenv/internal/addons/adopt"
	"github.com/imamik/k8zenv/internal/addons/helm"
)

const (
	vpcCNIChartName   = "aws-vpc-cni"
	vpcCNIDaemonSet   = "aws-node"
	vpcCNILegacyLabel = "k8s-app"
)

func storageClassChart(p *ChartsPrerequisites) helm.ChartInfo {
	return helm.ChartInfo{
		Name:      "q-storageclass",
		Path:      p.chartPath("/charts/q-storageclass"),
		Namespace: NamespaceKubeSystem,
	}
}

func userMapperChart(p *ChartsPrerequisites, tf *TerraformConfig) helm.ChartInfo {
	return helm.ChartInfo{
		Name:      "iam-eks-user-mapper",
		Path:      p.chartPath("charts/iam-eks-user-mapper"),
		Namespace: NamespaceKubeSystem,
		Values: withResources([]helm.SetValue{
			setString("aws.accessKey", tf.AWSIAMEKSUserMapperKey),
			setString("aws.secretKey", tf.AWSIAMEKSUserMapperSecret),
			set("aws.region", p.Region),
			setString("syncIamGroup", p.Advanced.IAMUserMapperGroup),
		}, resources("resources", "20m", "10m", "32Mi", "32Mi")),
	}
}

func corednsChart(p *ChartsPrerequisites) helm.ChartInfo {
	return helm.ChartInfo{
		Name:      "coredns",
		Path:      p.chartPath("/charts/coredns-config"),
		Namespace: NamespaceKubeSystem,
		Values: []helm.SetValue{
			{Key: "managed_dns", Value: p.ManagedDNSHelmFormat, Raw: true},
			setString("managed_dns_resolvers", p.ManagedDNSResolversTerraformFormat),
		},
	}
}

// vpcCNIAdopter hands the out-of-band aws-node install over to the
// aws-vpc-cni release.
func vpcCNIAdopter(opts *Options) *adopt.Adopter {
	return &adopt.Adopter{
		Client:           opts.Kube,
		Log:              opts.Log.WithName("adopt"),
		Metrics:          opts.Metrics,
		ResourceName:     vpcCNIDaemonSet,
		Namespace:        NamespaceKubeSystem,
		Kinds:            adopt.DefaultKinds(),
		ReleaseName:      vpcCNIChartName,
		ReleaseNamespace: NamespaceKubeSystem,
		LegacyLabelKey:   vpcCNILegacyLabel,
		LegacyLabelValue: vpcCNIDaemonSet,
		SettlePeriod:     opts.SettlePeriod,
	}
}

// vpcCNIChart reads the live daemon set selector when a cluster client is
// available and the plan is not a removal. Otherwise the chart is planned
// with new-style match labels and no adoption hook.
func vpcCNIChart(ctx context.Context, p *ChartsPrerequisites, opts *Options) (helm.ChartInfo, error) {
	c := helm.ChartInfo{
		Name:      vpcCNIChartName,
		Path:      p.chartPath("charts/aws-vpc-cni"),
		Namespace: NamespaceKubeSystem,
		Values: []helm.SetValue{
			set("image.region", p.Region),
			set("init.image.region", p.Region),
			set("image.pullPolicy", "IfNotPresent"),
			set("crd.create", "false"),
			// label ENIs
			setString("env.CLUSTER_NAME", p.ClusterName),
			// IPs allocated per node on init
			setString("env.MINIMUM_IP_TARGET", "60"),
			// free IPs kept available per node
			setString("env.WARM_IP_TARGET", "10"),
			// ENIs attached per node, keep at or under 100
			setString("env.MAX_ENI", "100"),
			setString("resources.requests.cpu", "50m"),
		},
	}

	if opts.Kube == nil || opts.Removal {
		c.Values = append(c.Values, setBool("originalMatchLabels", false))
		return c, nil
	}

	adopter := vpcCNIAdopter(opts)
	legacy, err := adopter.LegacyMatchLabels(ctx)
	if err != nil {
		return helm.ChartInfo{}, fmt.Errorf("error while getting daemonset info for chart %s, won't deploy CNI chart: %w", c.Name, err)
	}
	c.Values = append(c.Values, setBool("originalMatchLabels", legacy))
	c.PreExec = adopter.Run

	return c, nil
}

func awsUIViewChart(p *ChartsPrerequisites) helm.ChartInfo {
	return helm.ChartInfo{
		Name:      "aws-ui-view",
		Path:      p.chartPath("charts/aws-ui-view"),
		Namespace: NamespaceKubeSystem,
	}
}

func nodeTermHandlerChart(p *ChartsPrerequisites) helm.ChartInfo {
	return helm.ChartInfo{
		Name:      "aws-node-term-handler",
		Path:      p.chartPath("charts/aws-node-termination-handler"),
		Namespace: NamespaceKubeSystem,
		Values: []helm.SetValue{
			set("nameOverride", "aws-node-term-handler"),
			set("fullnameOverride", "aws-node-term-handler"),
			set("enableSpotInterruptionDraining", "true"),
			set("enableScheduledEventDraining", "true"),
			set("deleteLocalData", "true"),
			set("ignoreDaemonSets", "true"),
			set("podTerminationGracePeriod", "300"),
			set("nodeTerminationGracePeriod", "120"),
		},
	}
}
