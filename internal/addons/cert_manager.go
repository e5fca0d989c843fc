package addons

import (
	"github.com/Masterminds/semver/v3"

	"github.com/imamik/k8zenv/internal/addons/helm"
	"github.com/imamik/k8zenv/internal/addons/k8sclient"
)

func certManagerChart(p *ChartsPrerequisites) helm.ChartInfo {
	values := []helm.SetValue{
		set("installCRDs", "true"),
		setString(`startupapicheck.jobAnnotations.helm\.sh/hook`, "post-install,post-upgrade"),
		setString(`startupapicheck.rbac.annotations.helm\.sh/hook`, "post-install,post-upgrade"),
		setString(`startupapicheck.serviceAccount.annotations.helm\.sh/hook`, "post-install,post-upgrade"),
		set("replicaCount", "1"),
		// https://cert-manager.io/docs/configuration/acme/dns01/#setting-nameservers-for-dns01-self-check
		{Key: "extraArgs", Value: `{--dns01-recursive-nameservers-only,--dns01-recursive-nameservers=1.1.1.1:53\,8.8.8.8:53}`, Raw: true},
		setBool("prometheus.servicemonitor.enabled", p.FFMetricsHistoryEnabled),
		set("prometheus.servicemonitor.prometheusInstance", "qovery"),
	}
	values = append(values, resources("resources", "200m", "100m", "1Gi", "1Gi")...)
	values = append(values, resources("webhook.resources", "200m", "50m", "128Mi", "128Mi")...)
	values = append(values, resources("cainjector.resources", "500m", "100m", "1Gi", "1Gi")...)

	return helm.ChartInfo{
		Name:                                "cert-manager",
		Path:                                p.chartPath("common/charts/cert-manager"),
		Namespace:                           NamespaceCertManager,
		LastBreakingVersionRequiringRestart: semver.New(1, 4, 4, "", ""),
		Values:                              values,
	}
}

// certManagerConfigsChart installs the issuers for the selected DNS provider.
func certManagerConfigsChart(p *ChartsPrerequisites, kube k8sclient.Client) helm.ChartInfo {
	c := helm.ChartInfo{
		Name:      "cert-manager-configs",
		Path:      p.chartPath("common/charts/cert-manager-configs"),
		Namespace: NamespaceCertManager,
		Values: []helm.SetValue{
			set("externalDnsProvider", p.DNSProvider.CertManagerConfigName()),
			setString("acme.letsEncrypt.emailReport", p.DNSEmailReport),
			setString("acme.letsEncrypt.acmeUrl", p.AcmeURL),
			{Key: "managedDns", Value: p.ManagedDNSHelmFormat, Raw: true},
		},
	}
	c.Values = append(c.Values, p.DNSProvider.certManagerValues()...)

	if cf, ok := p.DNSProvider.(CloudflareDNS); ok && kube != nil {
		c.PreExec = cloudflareSecretHook(kube, cf.APIToken)
	}

	return c
}

// certManagerWebhookChart is only installed for the managed DNS provider.
func certManagerWebhookChart(p *ChartsPrerequisites, dns QoveryDNS) helm.ChartInfo {
	return helm.ChartInfo{
		Name:      "qovery-cert-manager-webhook",
		Path:      p.chartPath("common/charts/qovery-cert-manager-webhook"),
		Namespace: NamespaceCertManager,
		Values: withResources([]helm.SetValue{
			setString("secret.apiKey", dns.APIKey),
			// standard ports are omitted from the URL
			setString("secret.apiUrl", dns.APIURL),
			set("certManager.serviceAccountName", "cert-manager"),
			set("certManager.namespace", NamespaceCertManager),
		}, []helm.SetValue{
			setString("resources.limits.memory", "48Mi"),
			setString("resources.requests.memory", "48Mi"),
		}),
	}
}
