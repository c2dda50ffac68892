// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package layer

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spatialvision/geocluster/cluster"
	"github.com/spatialvision/geocluster/spatial"
)

// Server exposes the clustering operations as a local JSON API for
// interactive use.
type Server struct {
	engine *cluster.Engine
}

// NewServer builds a Server around a configured engine.
func NewServer(engine *cluster.Engine) *Server {
	return &Server{engine: engine}
}

// Register attaches the API routes to a router.
func (s *Server) Register(r *gin.Engine) {
	r.POST("/api/cluster/hierarchical", s.clusterHierarchical)
	r.POST("/api/cluster/kmeans", s.clusterKMeans)
}

// Run serves the API. Bind to localhost; nothing here is meant for the
// open internet.
func (s *Server) Run(addr string) error {
	r := gin.Default()
	s.Register(r)

	return r.Run(addr)
}

type hierarchicalRequest struct {
	Points      []spatial.Point `json:"points" binding:"required"`
	Identifiers []string        `json:"identifiers"`
	Tolerance   float64         `json:"tolerance"`
	Method      string          `json:"method"`
	Metric      string          `json:"metric"`
	Criterion   string          `json:"criterion"`
	FoldIdents  bool            `json:"fold_identifiers"`
}

type hierarchicalResponse struct {
	Labels   []int `json:"labels"`
	Clusters int   `json:"clusters"`
}

func (s *Server) clusterHierarchical(ctx *gin.Context) {
	var req hierarchicalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	opt := cluster.HierarchicalOptions{
		Tolerance: req.Tolerance,
		Method:    cluster.Method(defaulted(req.Method, string(cluster.Single))),
		Metric:    cluster.Metric(defaulted(req.Metric, string(cluster.Euclidean))),
		Criterion: cluster.Criterion(defaulted(req.Criterion, string(cluster.CriterionDistance))),
	}

	var (
		res *cluster.Result
		err error
	)

	if len(req.Identifiers) > 0 {
		identifiers := req.Identifiers
		if req.FoldIdents {
			folded := make([]string, len(identifiers))
			for i, id := range identifiers {
				folded[i] = FoldIdentifier(id)
			}

			identifiers = folded
		}

		res, err = s.engine.HierarchicalByIdentifier(req.Points, identifiers, opt)
	} else {
		res, err = s.engine.Hierarchical(req.Points, opt)
	}

	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, hierarchicalResponse{Labels: res.Labels, Clusters: res.Clusters})
}

type kmeansRequest struct {
	Points []spatial.Point `json:"points" binding:"required"`
	K      int             `json:"k" binding:"required"`
	Minit  string          `json:"minit"`
	Seed   int64           `json:"seed"`
}

type kmeansResponse struct {
	Labels    []int           `json:"labels"`
	Centroids []spatial.Point `json:"centroids"`
	Clusters  int             `json:"clusters"`
}

func (s *Server) clusterKMeans(ctx *gin.Context) {
	var req kmeansRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	res, err := s.engine.KMeans(req.Points, cluster.KMeansOptions{
		K:    req.K,
		Init: cluster.InitStrategy(defaulted(req.Minit, string(cluster.InitPoints))),
		Seed: req.Seed,
	})
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, kmeansResponse{
		Labels:    res.Labels,
		Centroids: res.Centroids,
		Clusters:  res.Clusters,
	})
}

func defaulted(v, fallback string) string {
	if v == "" {
		return fallback
	}

	return v
}

func statusFor(err error) int {
	if cluster.IsInvalidInput(err) || cluster.IsUnsupportedMetric(err) || cluster.IsNumericalDegeneracy(err) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
