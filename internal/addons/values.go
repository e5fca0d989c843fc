package addons

import (
	"strconv"

	"github.com/imamik/k8zenv/internal/addons/helm"
)

func set(key, value string) helm.SetValue {
	return helm.SetValue{Key: key, Value: value}
}

// setString keeps values like versions, ports and env vars strings.
func setString(key, value string) helm.SetValue {
	return helm.SetValue{Key: key, Value: value, AsString: true}
}

func setBool(key string, value bool) helm.SetValue {
	return helm.SetValue{Key: key, Value: strconv.FormatBool(value)}
}

// resources returns the limits and requests under base, e.g.
// "controller.resources".
func resources(base, limitCPU, requestCPU, limitMemory, requestMemory string) []helm.SetValue {
	return []helm.SetValue{
		setString(base+".limits.cpu", limitCPU),
		setString(base+".requests.cpu", requestCPU),
		setString(base+".limits.memory", limitMemory),
		setString(base+".requests.memory", requestMemory),
	}
}

func withResources(values []helm.SetValue, res []helm.SetValue) []helm.SetValue {
	return append(values, res...)
}
