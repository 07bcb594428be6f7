package kserve

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"shipping-price-pipeline/internal/config"
	output "shipping-price-pipeline/internal/core/ports/output"
)

const rolloutAnnotation = "shipping-price.pipeline/rolled-out-at"

var inferenceServiceGVR = schema.GroupVersionResource{
	Group:    "serving.kserve.io",
	Version:  "v1beta1",
	Resource: "inferenceservices",
}

type kserveClient struct {
	client    dynamic.Interface
	enabled   bool
	defaultNS string
}

// NewKServeClient creates a new KServe client adapter
func NewKServeClient(cfg *config.KubernetesConfig) (output.KServeClient, error) {
	if !cfg.Enabled {
		return &kserveClient{enabled: false}, nil
	}

	var restCfg *rest.Config
	var err error

	if cfg.InCluster {
		restCfg, err = rest.InClusterConfig()
	} else if cfg.KubeConfigPath != "" {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.KubeConfigPath)
	} else {
		// Try default kubeconfig location
		home, _ := os.UserHomeDir()
		kubeconfig := filepath.Join(home, ".kube", "config")
		restCfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	client, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}

	return newKServeClient(client, cfg.DefaultNS), nil
}

func newKServeClient(client dynamic.Interface, defaultNS string) *kserveClient {
	if defaultNS == "" {
		defaultNS = "model-serving"
	}
	return &kserveClient{
		client:    client,
		enabled:   true,
		defaultNS: defaultNS,
	}
}

func (c *kserveClient) IsAvailable() bool {
	return c.enabled
}

// Rollout points the predictor of an existing InferenceService at storageURI.
// KServe starts a new revision when the storage URI changes.
func (c *kserveClient) Rollout(ctx context.Context, namespace, name, storageURI string) (*output.KServeRollout, error) {
	if namespace == "" {
		namespace = c.defaultNS
	}

	patch, err := buildRolloutPatch(storageURI, time.Now())
	if err != nil {
		return nil, err
	}

	updated, err := c.client.Resource(inferenceServiceGVR).
		Namespace(namespace).
		Patch(ctx, name, types.MergePatchType, patch, metav1.PatchOptions{})
	if err != nil {
		return nil, fmt.Errorf("patch kserve inferenceservice: %w", err)
	}

	uri, _, _ := unstructured.NestedString(updated.Object, "spec", "predictor", "model", "storageUri")

	log.WithFields(log.Fields{
		"namespace":   namespace,
		"name":        name,
		"storage_uri": uri,
	}).Info("rolled out model to kserve")

	return &output.KServeRollout{
		Namespace:  namespace,
		Name:       name,
		StorageURI: uri,
		Generation: updated.GetGeneration(),
	}, nil
}

// GetStatus reads the Ready condition of the InferenceService. A service
// still reconciling a new revision reports Ready=false without an error.
func (c *kserveClient) GetStatus(ctx context.Context, namespace, name string) (*output.KServeStatus, error) {
	if namespace == "" {
		namespace = c.defaultNS
	}

	obj, err := c.client.Resource(inferenceServiceGVR).
		Namespace(namespace).
		Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get kserve inferenceservice: %w", err)
	}

	return readinessOf(obj), nil
}

func buildRolloutPatch(storageURI string, at time.Time) ([]byte, error) {
	patch := map[string]interface{}{
		"metadata": map[string]interface{}{
			"annotations": map[string]interface{}{
				rolloutAnnotation: at.UTC().Format(time.RFC3339),
			},
		},
		"spec": map[string]interface{}{
			"predictor": map[string]interface{}{
				"model": map[string]interface{}{
					"storageUri": storageURI,
				},
			},
		},
	}

	data, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode rollout patch: %w", err)
	}
	return data, nil
}

func readinessOf(obj *unstructured.Unstructured) *output.KServeStatus {
	status := &output.KServeStatus{Generation: obj.GetGeneration()}
	status.URL, _, _ = unstructured.NestedString(obj.Object, "status", "url")

	conditions, _, _ := unstructured.NestedSlice(obj.Object, "status", "conditions")
	for _, raw := range conditions {
		cond, ok := raw.(map[string]interface{})
		if !ok || cond["type"] != "Ready" {
			continue
		}
		status.Ready = cond["status"] == "True"
		if !status.Ready {
			status.Message, _ = cond["message"].(string)
		}
		break
	}
	return status
}

// Ensure interface compliance
var _ output.KServeClient = (*kserveClient)(nil)
