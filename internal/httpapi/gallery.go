package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/korssa/gong34/internal/catalog"
	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/filter"
	"github.com/korssa/gong34/internal/models"
)

type membershipsBody struct {
	Featured models.MembershipSet `json:"featured"`
	Events   models.MembershipSet `json:"events"`
}

type appResult struct {
	Success bool                `json:"success"`
	App     models.CatalogEntry `json:"app"`
}

type deleteResult struct {
	Success bool `json:"success"`
	Deleted bool `json:"deleted"`
}

type membershipResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Member  bool   `json:"member"`
}

type setMembershipRequest struct {
	Value *bool `json:"value"`
}

func (s *Server) listApps(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	featured, events := s.deps.Catalog.Memberships()
	apps := s.deps.Engine.Apply(s.deps.Catalog.Entries(), q.Get("q"), filter.ParseMode(q.Get("filter")), featured, events)
	s.writeJSON(w, r, http.StatusOK, apps)
}

func (s *Server) latestApp(w http.ResponseWriter, r *http.Request) {
	e, ok := filter.Latest(s.deps.Catalog.Entries())
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: no published app", common.ErrNotFound))
		return
	}
	s.writeJSON(w, r, http.StatusOK, e)
}

func (s *Server) getApp(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	e, ok := s.deps.Catalog.Get(id)
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: app %s", common.ErrNotFound, id))
		return
	}
	s.writeJSON(w, r, http.StatusOK, e)
}

func (s *Server) memberships(w http.ResponseWriter, r *http.Request) {
	featured, events := s.deps.Catalog.Memberships()
	s.writeJSON(w, r, http.StatusOK, membershipsBody{Featured: featured, Events: events})
}

func (s *Server) createApp(w http.ResponseWriter, r *http.Request) {
	fields, assets, err := s.appRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.deps.Catalog.Create(r.Context(), fields, assets)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, appResult{Success: true, App: e})
}

func (s *Server) updateApp(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	fields, assets, err := s.appRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, found, err := s.deps.Catalog.Update(r.Context(), id, fields, assets)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !found {
		s.writeError(w, r, fmt.Errorf("%w: app %s", common.ErrNotFound, id))
		return
	}
	s.writeJSON(w, r, http.StatusOK, appResult{Success: true, App: e})
}

func (s *Server) deleteApp(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.deps.Catalog.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, deleteResult{Success: true, Deleted: deleted})
}

// membership toggles on POST and sets on PUT.
func (s *Server) membership(m catalog.Membership) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if _, ok := s.deps.Catalog.Get(id); !ok {
			s.writeError(w, r, fmt.Errorf("%w: app %s", common.ErrNotFound, id))
			return
		}

		var (
			member bool
			err    error
		)
		if r.Method == http.MethodPut {
			var req setMembershipRequest
			if derr := json.NewDecoder(r.Body).Decode(&req); derr != nil || req.Value == nil {
				s.writeError(w, r, fmt.Errorf("%w: body must be {\"value\": bool}", common.ErrValidation))
				return
			}
			member, err = s.deps.Catalog.Set(r.Context(), m, id, *req.Value)
		} else {
			member, err = s.deps.Catalog.Toggle(r.Context(), m, id)
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, r, http.StatusOK, membershipResult{Success: true, ID: id, Member: member})
	}
}
