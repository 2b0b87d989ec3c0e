package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/roomgraph/pkg/buildinfo"
	rgerrors "github.com/matzehuels/roomgraph/pkg/errors"
	rgio "github.com/matzehuels/roomgraph/pkg/io"
	"github.com/matzehuels/roomgraph/pkg/render/nodelink"
	"github.com/matzehuels/roomgraph/pkg/roomgraph"
)

// =============================================================================
// Request / response bodies
// =============================================================================

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    rgerrors.Code `json:"code"`
	Message string        `json:"message"`
	Reason  string        `json:"reason,omitempty"`
}

type addNodeRequest struct {
	Type string `json:"type"`
}

type patchNodeRequest struct {
	Type         *string         `json:"type"`
	Presentation json.RawMessage `json:"presentation"`
}

type edgeRequest struct {
	ParentID string `json:"parent_id"`
	ChildID  string `json:"child_id"`
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

// =============================================================================
// Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to an HTTP status.
func statusFor(code rgerrors.Code) int {
	switch code {
	case rgerrors.ErrCodeInvalidInput, rgerrors.ErrCodeInvalidName, rgerrors.ErrCodeInvalidType:
		return http.StatusBadRequest
	case rgerrors.ErrCodeInvalidGraph:
		return http.StatusUnprocessableEntity
	case rgerrors.ErrCodeGraphNotFound, rgerrors.ErrCodeNodeNotFound:
		return http.StatusNotFound
	case rgerrors.ErrCodeConnectionDenied, rgerrors.ErrCodeDuplicateEntrance,
		rgerrors.ErrCodeEntranceProtected, rgerrors.ErrCodeGraphExists:
		return http.StatusConflict
	case rgerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := rgerrors.GetCode(err)
	if code == "" {
		code = rgerrors.ErrCodeInternal
	}
	status := statusFor(code)
	detail := errorDetail{Code: code, Message: rgerrors.UserMessage(err)}
	if reason, ok := roomgraph.ReasonOf(err); ok {
		detail.Reason = reason.String()
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: detail})
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(r *http.Request, w http.ResponseWriter, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	return nil
}

func graphName(r *http.Request) string {
	return chi.URLParam(r, "name")
}

// =============================================================================
// Handlers
// =============================================================================

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"types": s.svc.Types().All()})
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	names, err := s.svc.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"graphs": names})
}

func (s *Server) handlePutGraph(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, rgerrors.Wrap(rgerrors.ErrCodeInvalidInput, err, "read body: %v", err))
		return
	}
	snap, err := rgio.DecodeSnapshot(data)
	if err != nil {
		s.writeError(w, r, rgerrors.Wrap(rgerrors.ErrCodeInvalidInput, err, "%v", err))
		return
	}
	if err := s.svc.Put(r.Context(), graphName(r), snap); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeGraph(w, r, http.StatusOK)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	s.writeGraph(w, r, http.StatusOK)
}

func (s *Server) writeGraph(w http.ResponseWriter, r *http.Request, status int) {
	snap, err := s.svc.Get(r.Context(), graphName(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := rgio.EncodeSnapshot(snap)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Remove(r.Context(), graphName(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	var dot string
	err := s.svc.View(r.Context(), graphName(r), func(g *roomgraph.Graph) error {
		dot = nodelink.ToDOT(g, nodelink.Options{Detailed: detailed})
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = io.WriteString(w, dot)
	case "svg":
		svg, err := nodelink.RenderSVG(r.Context(), dot)
		if err != nil {
			s.writeError(w, r, rgerrors.Wrap(rgerrors.ErrCodeInternal, err, "render svg"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		s.writeError(w, r, rgerrors.New(rgerrors.ErrCodeUnsupported, "unsupported format %q", format))
	}
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decode(r, w, &req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, err)
		return
	}
	id, err := s.svc.AddNode(r.Context(), graphName(r), req.Type)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handlePatchNode(w http.ResponseWriter, r *http.Request) {
	var req patchNodeRequest
	if err := decode(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Type == nil && req.Presentation == nil {
		s.writeError(w, r, rgerrors.New(rgerrors.ErrCodeInvalidInput, "nothing to change: set type or presentation"))
		return
	}

	ctx, name, id := r.Context(), graphName(r), chi.URLParam(r, "id")
	if err := rgerrors.ValidateNodeID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	severed := []roomgraph.Edge{}
	if req.Type != nil {
		edges, err := s.svc.SetNodeType(ctx, name, id, *req.Type)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		severed = append(severed, edges...)
	}
	if req.Presentation != nil {
		if err := s.svc.SetPresentation(ctx, name, id, req.Presentation); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "severed": severed})
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteNode(r.Context(), graphName(r), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteNodes(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decode(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := s.svc.DeleteNodes(r.Context(), graphName(r), req.IDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) decodeEdge(w http.ResponseWriter, r *http.Request) (edgeRequest, error) {
	var req edgeRequest
	if err := decode(r, w, &req); err != nil {
		return req, err
	}
	if req.ParentID == "" || req.ChildID == "" {
		return req, rgerrors.New(rgerrors.ErrCodeInvalidInput, "parent_id and child_id are required")
	}
	return req, nil
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeEdge(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Connect(r.Context(), graphName(r), req.ParentID, req.ChildID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, roomgraph.Edge{From: req.ParentID, To: req.ChildID})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeEdge(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	removed, err := s.svc.Disconnect(r.Context(), graphName(r), req.ParentID, req.ChildID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	parent, child := r.URL.Query().Get("parent"), r.URL.Query().Get("child")
	if parent == "" || child == "" {
		s.writeError(w, r, rgerrors.New(rgerrors.ErrCodeInvalidInput, "parent and child query parameters are required"))
		return
	}
	var verdict error
	err := s.svc.View(r.Context(), graphName(r), func(g *roomgraph.Graph) error {
		verdict = g.CanConnect(parent, child)
		if _, denied := roomgraph.ReasonOf(verdict); verdict != nil && !denied {
			return verdict
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := map[string]any{"allowed": verdict == nil}
	if reason, ok := roomgraph.ReasonOf(verdict); ok {
		resp["reason"] = reason.String()
		resp["message"] = reason.Message()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnlink(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decode(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := s.svc.Unlink(r.Context(), graphName(r), req.IDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}
