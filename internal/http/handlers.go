package http

import (
	"errors"
	"net/http"

	"makeros/internal/core"
)

// handleSnapshot returns every collection in one read.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

type dashboardResponse struct {
	Budget     core.BudgetSummary `json:"budget"`
	Upcoming   []core.Activity    `json:"upcoming"`
	Week       [7][]core.Activity `json:"week"`
	Engagement engagementResponse `json:"engagement"`
}

type engagementResponse struct {
	Totals    core.EngagementTotals `json:"totals"`
	Reach     int                   `json:"reach"`
	Breakdown []core.ChartSlice     `json:"breakdown"`
}

// handleDashboard derives every overview in one response. Aggregations are
// recomputed from current state on each call.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	classes := s.store.Classes()
	events := s.store.Events()
	totals := core.SumStats(s.store.Stats())

	writeJSON(w, http.StatusOK, dashboardResponse{
		Budget:   core.Summarize(s.store.Transactions(), s.budget),
		Upcoming: core.Upcoming(classes, events),
		Week:     core.WeekBuckets(classes, events),
		Engagement: engagementResponse{
			Totals:    totals,
			Reach:     totals.Reach(),
			Breakdown: totals.Breakdown(),
		},
	})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reporter.Status())
}

func (s *Server) handleListStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Stats.List())
}

func (s *Server) handleUpsertStat(w http.ResponseWriter, r *http.Request) {
	var entry core.StatEntry
	if err := decode(r, &entry); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	next, err := s.svc.Stats.Upsert(r.Context(), entry)
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, next)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Ledger.List())
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var input core.Transaction
	if err := decode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.svc.Ledger.Create(r.Context(), input)
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var input core.Transaction
	if err := decode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	next, err := s.svc.Ledger.Update(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, next)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Ledger.Delete(r.Context(), r.PathValue("id")))
}

func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Classes.List())
}

func (s *Server) handleCreateClass(w http.ResponseWriter, r *http.Request) {
	var input core.ClassItem
	if err := decode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.svc.Classes.Create(r.Context(), input)
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateClass(w http.ResponseWriter, r *http.Request) {
	var input core.ClassItem
	if err := decode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	next, err := s.svc.Classes.Update(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, next)
}

func (s *Server) handleDeleteClass(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Classes.Delete(r.Context(), r.PathValue("id")))
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Events.List())
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var input core.EventItem
	if err := decode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.svc.Events.Create(r.Context(), input)
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var input core.EventItem
	if err := decode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	next, err := s.svc.Events.Update(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, next)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Events.Delete(r.Context(), r.PathValue("id")))
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Tasks.List())
}

type createTaskRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var input createTaskRequest
	if err := decode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.svc.Tasks.Create(r.Context(), input.Text)
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var input core.Task
	if err := decode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	next, err := s.svc.Tasks.Update(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, next)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Tasks.Toggle(r.Context(), r.PathValue("id")))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Tasks.Delete(r.Context(), r.PathValue("id")))
}

func (s *Server) handleListShopping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Shopping.List())
}

type createShoppingRequest struct {
	Item     string `json:"item"`
	Quantity string `json:"quantity"`
}

func (s *Server) handleCreateShoppingItem(w http.ResponseWriter, r *http.Request) {
	var input createShoppingRequest
	if err := decode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.svc.Shopping.Create(r.Context(), input.Item, input.Quantity)
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateShoppingItem(w http.ResponseWriter, r *http.Request) {
	var input core.ShoppingItem
	if err := decode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	next, err := s.svc.Shopping.Update(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, next)
}

func (s *Server) handleDeleteShoppingItem(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Shopping.Delete(r.Context(), r.PathValue("id")))
}

func (s *Server) handleGetActivator(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Activator.Get())
}

func (s *Server) handleReplaceActivator(w http.ResponseWriter, r *http.Request) {
	var doc core.ActivatorDocument
	if err := decode(r, &doc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	replaced, err := s.svc.Activator.Replace(r.Context(), doc)
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, replaced)
}

func (s *Server) handleDailySpark(w http.ResponseWriter, r *http.Request) {
	if s.spark == nil {
		writeError(w, http.StatusServiceUnavailable, "suggestion provider not configured")
		return
	}
	p, err := s.spark.Daily(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRegenerateSpark(w http.ResponseWriter, r *http.Request) {
	if s.spark == nil {
		writeError(w, http.StatusServiceUnavailable, "suggestion provider not configured")
		return
	}
	p, err := s.spark.Regenerate(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePromoteSpark(w http.ResponseWriter, r *http.Request) {
	if s.spark == nil {
		writeError(w, http.StatusServiceUnavailable, "suggestion provider not configured")
		return
	}
	doc, err := s.spark.Promote(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrMissingSuggested) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
