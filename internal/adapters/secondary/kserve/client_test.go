package kserve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"

	"shipping-price-pipeline/internal/config"
)

func newInferenceService(namespace, name, storageURI string, status map[string]interface{}) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "serving.kserve.io/v1beta1",
			"kind":       "InferenceService",
			"metadata": map[string]interface{}{
				"name":      name,
				"namespace": namespace,
			},
			"spec": map[string]interface{}{
				"predictor": map[string]interface{}{
					"model": map[string]interface{}{
						"modelFormat": map[string]interface{}{"name": "sklearn"},
						"storageUri":  storageURI,
					},
				},
			},
		},
	}
	if status != nil {
		obj.Object["status"] = status
	}
	return obj
}

func TestRollout_PatchesStorageURI(t *testing.T) {
	existing := newInferenceService("model-serving", "shipping-price", "s3://bucket/old.json", nil)
	fake := dynamicfake.NewSimpleDynamicClient(runtime.NewScheme(), existing)
	c := newKServeClient(fake, "")

	res, err := c.Rollout(context.Background(), "", "shipping-price", "s3://bucket/model/versions/ts/m.json")
	require.NoError(t, err)
	assert.Equal(t, "model-serving", res.Namespace)
	assert.Equal(t, "s3://bucket/model/versions/ts/m.json", res.StorageURI)

	got, err := fake.Resource(inferenceServiceGVR).Namespace("model-serving").Get(context.Background(), "shipping-price", metav1.GetOptions{})
	require.NoError(t, err)
	format, _, _ := unstructured.NestedString(got.Object, "spec", "predictor", "model", "modelFormat", "name")
	assert.Equal(t, "sklearn", format, "merge patch keeps untouched fields")
	assert.Contains(t, got.GetAnnotations(), rolloutAnnotation)
}

func TestRollout_MissingService(t *testing.T) {
	fake := dynamicfake.NewSimpleDynamicClient(runtime.NewScheme())
	c := newKServeClient(fake, "model-serving")

	_, err := c.Rollout(context.Background(), "", "absent", "s3://bucket/m.json")
	assert.Error(t, err)
}

func TestGetStatus(t *testing.T) {
	status := map[string]interface{}{
		"url": "http://shipping-price.model-serving.example.com",
		"conditions": []interface{}{
			map[string]interface{}{"type": "Ready", "status": "False", "message": "revision failed"},
		},
	}
	existing := newInferenceService("ns", "shipping-price", "s3://bucket/m.json", status)
	c := newKServeClient(dynamicfake.NewSimpleDynamicClient(runtime.NewScheme(), existing), "ns")

	got, err := c.GetStatus(context.Background(), "ns", "shipping-price")
	require.NoError(t, err)
	assert.False(t, got.Ready)
	assert.Equal(t, "revision failed", got.Message)
	assert.Equal(t, "http://shipping-price.model-serving.example.com", got.URL)
}

func TestGetStatus_Ready(t *testing.T) {
	status := map[string]interface{}{
		"conditions": []interface{}{
			map[string]interface{}{"type": "PredictorReady", "status": "False"},
			map[string]interface{}{"type": "Ready", "status": "True"},
		},
	}
	existing := newInferenceService("ns", "shipping-price", "s3://bucket/m.json", status)
	c := newKServeClient(dynamicfake.NewSimpleDynamicClient(runtime.NewScheme(), existing), "ns")

	got, err := c.GetStatus(context.Background(), "", "shipping-price")
	require.NoError(t, err)
	assert.True(t, got.Ready)
	assert.Empty(t, got.Message)
}

func TestNewKServeClient_Disabled(t *testing.T) {
	c, err := NewKServeClient(&config.KubernetesConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, c.IsAvailable())
}
