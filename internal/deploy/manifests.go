package deploy

import (
	"bytes"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/intstr"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/imamik/k8zenv/internal/environment"
)

// Labels set on every object of an environment.
const (
	LabelManagedBy   = "app.kubernetes.io/managed-by"
	LabelEnvironment = "k8zenv.io/environment-id"
	LabelService     = "k8zenv.io/service-id"
)

const (
	managedBy           = "k8zenv"
	databaseStorageSize = "10Gi"
)

// databaseEngine is how a container-mode database runs in the cluster.
type databaseEngine struct {
	image     string
	port      int32
	mountPath string
	env       []corev1.EnvVar
}

var databaseEngines = map[string]databaseEngine{
	"postgresql": {
		image:     "postgres",
		port:      5432,
		mountPath: "/var/lib/postgresql/data",
		env: []corev1.EnvVar{
			{Name: "PGDATA", Value: "/var/lib/postgresql/data/pgdata"},
			{Name: "POSTGRES_HOST_AUTH_METHOD", Value: "trust"},
		},
	},
	"mysql": {
		image:     "mysql",
		port:      3306,
		mountPath: "/var/lib/mysql",
		env:       []corev1.EnvVar{{Name: "MYSQL_ALLOW_EMPTY_PASSWORD", Value: "yes"}},
	},
	"mongodb": {image: "mongo", port: 27017, mountPath: "/data/db"},
	"redis":   {image: "redis", port: 6379, mountPath: "/data"},
}

// renderer turns services into Kubernetes objects for one environment.
type renderer struct {
	env           *environment.Environment
	paused        bool
	ingressClass  string
	clusterIssuer string
}

func (r *renderer) labels(svc environment.Service) map[string]string {
	return map[string]string{
		LabelManagedBy:   managedBy,
		LabelEnvironment: r.env.ID,
		LabelService:     svc.ID(),
	}
}

func (r *renderer) meta(svc environment.Service) metav1.ObjectMeta {
	return metav1.ObjectMeta{
		Name:        svc.ID(),
		Namespace:   r.env.Namespace(),
		Labels:      r.labels(svc),
		Annotations: map[string]string{"k8zenv.io/service-name": svc.Name()},
	}
}

func (r *renderer) replicas(n int) *int32 {
	if r.paused {
		n = 0
	}
	v := int32(max(n, 0)) // #nosec G115
	return &v
}

// objects returns the objects of one service. Routers render nothing when
// paused.
func (r *renderer) objects(svc environment.Service) ([]runtime.Object, error) {
	switch s := svc.(type) {
	case *environment.Application:
		return r.application(s)
	case *environment.Container:
		return r.workload(s, s.Image.FullImageNameWithTag(), s.Ports, 1, 0), nil
	case *environment.Database:
		return r.database(s)
	case *environment.Router:
		if r.paused {
			return nil, nil
		}
		return r.router(s)
	default:
		return nil, fmt.Errorf("unsupported service kind %s", svc.Kind())
	}
}

func (r *renderer) application(app *environment.Application) ([]runtime.Object, error) {
	if app.Build == nil {
		return nil, fmt.Errorf("application %s has no image", app.Name())
	}
	deadline := int32(app.StartupTimeout().Seconds()) // #nosec G115
	objs := r.workload(app, app.Build.Image.FullImageNameWithTag(), app.Ports, max(app.MinInstances, 1), deadline)

	if app.MaxInstances > app.MinInstances && !r.paused {
		minReplicas := int32(max(app.MinInstances, 1)) // #nosec G115
		objs = append(objs, &autoscalingv2.HorizontalPodAutoscaler{
			TypeMeta:   metav1.TypeMeta{APIVersion: "autoscaling/v2", Kind: "HorizontalPodAutoscaler"},
			ObjectMeta: r.meta(app),
			Spec: autoscalingv2.HorizontalPodAutoscalerSpec{
				ScaleTargetRef: autoscalingv2.CrossVersionObjectReference{
					APIVersion: "apps/v1",
					Kind:       "Deployment",
					Name:       app.ID(),
				},
				MinReplicas: &minReplicas,
				MaxReplicas: int32(app.MaxInstances), // #nosec G115
				Metrics: []autoscalingv2.MetricSpec{{
					Type: autoscalingv2.ResourceMetricSourceType,
					Resource: &autoscalingv2.ResourceMetricSource{
						Name:   corev1.ResourceCPU,
						Target: autoscalingv2.MetricTarget{Type: autoscalingv2.UtilizationMetricType, AverageUtilization: int32Ptr(70)},
					},
				}},
			},
		})
	}
	return objs, nil
}

// workload renders a Deployment and, when ports are exposed, a Service.
func (r *renderer) workload(svc environment.Service, image string, ports []environment.Port, replicas int, progressDeadline int32) []runtime.Object {
	container := corev1.Container{Name: "main", Image: image}
	for _, p := range ports {
		container.Ports = append(container.Ports, corev1.ContainerPort{
			Name:          portName(p.Number),
			ContainerPort: int32(p.Number), // #nosec G115
			Protocol:      corev1.ProtocolTCP,
		})
	}

	deploy := &appsv1.Deployment{
		TypeMeta:   metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: r.meta(svc),
		Spec: appsv1.DeploymentSpec{
			Replicas: r.replicas(replicas),
			Selector: &metav1.LabelSelector{MatchLabels: map[string]string{LabelService: svc.ID()}},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: r.labels(svc)},
				Spec:       corev1.PodSpec{Containers: []corev1.Container{container}},
			},
		},
	}
	if progressDeadline > 0 {
		deploy.Spec.ProgressDeadlineSeconds = &progressDeadline
	}

	objs := []runtime.Object{deploy}
	if svcObj := r.service(svc, container.Ports); svcObj != nil {
		objs = append(objs, svcObj)
	}
	return objs
}

func (r *renderer) service(svc environment.Service, ports []corev1.ContainerPort) *corev1.Service {
	if len(ports) == 0 {
		return nil
	}
	out := &corev1.Service{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: r.meta(svc),
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeClusterIP,
			Selector: map[string]string{LabelService: svc.ID()},
		},
	}
	for _, p := range ports {
		out.Spec.Ports = append(out.Spec.Ports, corev1.ServicePort{
			Name:       p.Name,
			Port:       p.ContainerPort,
			TargetPort: intstr.FromInt32(p.ContainerPort),
			Protocol:   corev1.ProtocolTCP,
		})
	}
	return out
}

func (r *renderer) database(db *environment.Database) ([]runtime.Object, error) {
	engine, ok := databaseEngines[db.Engine]
	if !ok {
		return nil, fmt.Errorf("database %s: unsupported engine %q", db.Name(), db.Engine)
	}
	tag := db.Version
	if tag == "" {
		tag = "latest"
	}

	ports := []corev1.ContainerPort{{Name: portName(int(engine.port)), ContainerPort: engine.port, Protocol: corev1.ProtocolTCP}}
	set := &appsv1.StatefulSet{
		TypeMeta:   metav1.TypeMeta{APIVersion: "apps/v1", Kind: "StatefulSet"},
		ObjectMeta: r.meta(db),
		Spec: appsv1.StatefulSetSpec{
			Replicas:    r.replicas(1),
			ServiceName: db.ID(),
			Selector:    &metav1.LabelSelector{MatchLabels: map[string]string{LabelService: db.ID()}},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: r.labels(db)},
				Spec: corev1.PodSpec{Containers: []corev1.Container{{
					Name:         "main",
					Image:        engine.image + ":" + tag,
					Ports:        ports,
					Env:          engine.env,
					VolumeMounts: []corev1.VolumeMount{{Name: "data", MountPath: engine.mountPath}},
				}}},
			},
			VolumeClaimTemplates: []corev1.PersistentVolumeClaim{{
				TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "PersistentVolumeClaim"},
				ObjectMeta: metav1.ObjectMeta{Name: "data"},
				Spec: corev1.PersistentVolumeClaimSpec{
					AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce},
					Resources: corev1.VolumeResourceRequirements{
						Requests: corev1.ResourceList{corev1.ResourceStorage: resource.MustParse(databaseStorageSize)},
					},
				},
			}},
		},
	}
	return []runtime.Object{set, r.service(db, ports)}, nil
}

func (r *renderer) router(router *environment.Router) ([]runtime.Object, error) {
	var paths []networkingv1.HTTPIngressPath
	for _, route := range router.Routes {
		port, err := r.targetPort(route.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("router %s: %w", router.Name(), err)
		}
		pathType := networkingv1.PathTypePrefix
		paths = append(paths, networkingv1.HTTPIngressPath{
			Path:     route.Path,
			PathType: &pathType,
			Backend: networkingv1.IngressBackend{Service: &networkingv1.IngressServiceBackend{
				Name: route.ServiceID,
				Port: networkingv1.ServiceBackendPort{Number: port},
			}},
		})
	}

	hosts := router.CustomDomains
	if router.DefaultDomain != "" {
		hosts = append([]string{router.DefaultDomain}, hosts...)
	}

	meta := r.meta(router)
	if r.clusterIssuer != "" {
		meta.Annotations["cert-manager.io/cluster-issuer"] = r.clusterIssuer
	}
	ingress := &networkingv1.Ingress{
		TypeMeta:   metav1.TypeMeta{APIVersion: "networking.k8s.io/v1", Kind: "Ingress"},
		ObjectMeta: meta,
	}
	if r.ingressClass != "" {
		class := r.ingressClass
		ingress.Spec.IngressClassName = &class
	}
	for _, host := range hosts {
		ingress.Spec.Rules = append(ingress.Spec.Rules, networkingv1.IngressRule{
			Host:             host,
			IngressRuleValue: networkingv1.IngressRuleValue{HTTP: &networkingv1.HTTPIngressRuleValue{Paths: paths}},
		})
	}
	if r.clusterIssuer != "" {
		ingress.Spec.TLS = []networkingv1.IngressTLS{{Hosts: hosts, SecretName: router.ID() + "-tls"}}
	}
	return []runtime.Object{ingress}, nil
}

// targetPort is the first port of the routed service.
func (r *renderer) targetPort(serviceID string) (int32, error) {
	for _, app := range r.env.Applications {
		if app.ID() == serviceID && len(app.Ports) > 0 {
			return int32(app.Ports[0].Number), nil // #nosec G115
		}
	}
	for _, c := range r.env.Containers {
		if c.ID() == serviceID && len(c.Ports) > 0 {
			return int32(c.Ports[0].Number), nil // #nosec G115
		}
	}
	for _, db := range r.env.Databases {
		if engine, ok := databaseEngines[db.Engine]; ok && db.ID() == serviceID {
			return engine.port, nil
		}
	}
	return 0, fmt.Errorf("route target %s exposes no port", serviceID)
}

// marshal joins the objects into one multi-document YAML stream.
func marshal(objs []runtime.Object) ([]byte, error) {
	var buf bytes.Buffer
	for i, obj := range objs {
		out, err := sigsyaml.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %T: %w", obj, err)
		}
		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(out)
	}
	return buf.Bytes(), nil
}

func portName(n int) string {
	return fmt.Sprintf("p%d", n)
}

func int32Ptr(v int32) *int32 {
	return &v
}
