// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package layer

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spatialvision/geocluster/cluster"
)

// setupServerTest initializes a Gin router backed by a default engine.
func setupServerTest(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.Default()

	server := NewServer(cluster.NewEngine())
	server.Register(router)

	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestAPIHierarchical(t *testing.T) {
	router := setupServerTest(t)

	w := postJSON(t, router, "/api/cluster/hierarchical", gin.H{
		"points":    []gin.H{{"x": 0, "y": 0}, {"x": 0, "y": 1}, {"x": 10, "y": 0}, {"x": 10, "y": 1}},
		"tolerance": 2,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var res hierarchicalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))

	assert.Equal(t, 2, res.Clusters)
	assert.Equal(t, []int{1, 1, 2, 2}, res.Labels)
}

func TestAPIHierarchicalByIdentifier(t *testing.T) {
	router := setupServerTest(t)

	w := postJSON(t, router, "/api/cluster/hierarchical", gin.H{
		"points":      []gin.H{{"x": 0, "y": 0}, {"x": 0, "y": 1}, {"x": 0, "y": 2}},
		"identifiers": []string{"A", "A", "B"},
		"tolerance":   5,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var res hierarchicalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))

	assert.Equal(t, 2, res.Clusters)
	assert.Equal(t, res.Labels[0], res.Labels[1])
	assert.NotEqual(t, res.Labels[0], res.Labels[2])
}

func TestAPIHierarchicalRejectsBadTolerance(t *testing.T) {
	router := setupServerTest(t)

	w := postJSON(t, router, "/api/cluster/hierarchical", gin.H{
		"points":    []gin.H{{"x": 0, "y": 0}, {"x": 0, "y": 1}},
		"tolerance": 0,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIKMeans(t *testing.T) {
	router := setupServerTest(t)

	w := postJSON(t, router, "/api/cluster/kmeans", gin.H{
		"points": []gin.H{{"x": 0, "y": 0}, {"x": 0, "y": 1}, {"x": 0, "y": 0}, {"x": 0, "y": 1}},
		"k":      2,
		"seed":   7,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var res kmeansResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))

	assert.Equal(t, 2, res.Clusters)
	assert.Len(t, res.Centroids, 2)
	assert.Len(t, res.Labels, 4)
}

func TestAPIKMeansRejectsOversizedK(t *testing.T) {
	router := setupServerTest(t)

	w := postJSON(t, router, "/api/cluster/kmeans", gin.H{
		"points": []gin.H{{"x": 0, "y": 0}, {"x": 1, "y": 1}, {"x": 2, "y": 2}},
		"k":      5,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
