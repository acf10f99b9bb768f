package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/models"
	"github.com/yuanzac/submarine/internal/repository"
	"github.com/yuanzac/submarine/internal/service"
)

const (
	dictPrefix     = "/api/sys/dict/"
	dictItemPrefix = "/api/sys/dictItem/"
)

type DictHandler struct {
	dicts  service.DictService
	logger *zap.Logger
}

func NewDictHandler(dicts service.DictService, logger *zap.Logger) *DictHandler {
	return &DictHandler{dicts: dicts, logger: logger}
}

func (h *DictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == dictPrefix+"list" && r.Method == http.MethodGet:
		h.List(w, r)
	case strings.HasPrefix(r.URL.Path, dictItemPrefix+"getDictItems/") && r.Method == http.MethodGet:
		code := strings.TrimPrefix(r.URL.Path, dictItemPrefix+"getDictItems/")
		if code == "" || strings.Contains(code, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.Items(w, r, code)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *DictHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.DictFilter{
		DictCode: strings.TrimSpace(q.Get("dictCode")),
		DictName: strings.TrimSpace(q.Get("dictName")),
	}
	page := models.PageParams{
		PageNo:   parseInt(q.Get("pageNo"), 1),
		PageSize: parseInt(q.Get("pageSize"), models.DefaultPageSize),
	}
	res, err := h.dicts.ListDicts(r.Context(), filter, page)
	if err != nil {
		h.logger.Error("Query dict list failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("Query dict failed!"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

func (h *DictHandler) Items(w http.ResponseWriter, r *http.Request, code string) {
	writeJSON(w, http.StatusOK, Ok(h.dicts.QueryDictByCode(r.Context(), code)))
}
