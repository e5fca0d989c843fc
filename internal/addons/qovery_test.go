package addons

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/k8zenv/internal/addons/helm"
	"github.com/imamik/k8zenv/internal/config"
)

func TestEngineAction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, helm.ActionInstall, engineAction(config.EngineLocationClusterSide))
	assert.Equal(t, helm.ActionDestroy, engineAction(config.EngineLocationQoverySide))
}

func TestQoveryEngineChart(t *testing.T) {
	t.Parallel()

	p := testPrerequisites()
	p.FFMetricsHistoryEnabled = true

	c, err := qoveryEngineChart(p)
	require.NoError(t, err)
	assert.Equal(t, helm.ActionInstall, c.Action)
	assert.Equal(t, 900, c.TimeoutSeconds)

	tag, _ := valueOf(c, "image.tag")
	assert.Equal(t, "1.0.0", tag)
	metrics, _ := valueOf(c, "metrics.enabled")
	assert.Equal(t, "true", metrics)
}

func TestQoveryEngineChart_RequiresVersionInCluster(t *testing.T) {
	t.Parallel()

	p := testPrerequisites()
	p.Infra.EngineVersion = ""

	_, err := qoveryEngineChart(p)
	require.Error(t, err)

	p.EngineLocation = config.EngineLocationQoverySide
	c, err := qoveryEngineChart(p)
	require.NoError(t, err)
	assert.Equal(t, helm.ActionDestroy, c.Action)
}

func TestClusterAgentChart_LokiURL(t *testing.T) {
	t.Parallel()

	p := testPrerequisites()
	_, ok := valueOf(clusterAgentChart(p), "environmentVariables.LOKI_URL")
	assert.False(t, ok)

	p.FFLogHistoryEnabled = true
	url, ok := valueOf(clusterAgentChart(p), "environmentVariables.LOKI_URL")
	assert.True(t, ok)
	assert.Equal(t, lokiInClusterURL, url)
}

func TestQoveryAgentChart_IsRemoved(t *testing.T) {
	t.Parallel()

	c := qoveryAgentChart(testPrerequisites())
	assert.Equal(t, helm.ActionDestroy, c.Action)
	assert.Equal(t, NamespaceQovery, c.Namespace)
}
