package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/domain"
	"github.com/yuanzac/submarine/internal/models"
	"github.com/yuanzac/submarine/internal/repository"
	"github.com/yuanzac/submarine/internal/service"
)

const deptPrefix = "/api/sys/dept/"

// DeptHandler serves department management.
type DeptHandler struct {
	svc    service.DeptService
	logger *zap.Logger
}

func NewDeptHandler(svc service.DeptService, logger *zap.Logger) *DeptHandler {
	return &DeptHandler{svc: svc, logger: logger}
}

func (h *DeptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, deptPrefix)
	switch {
	case action == "tree" && r.Method == http.MethodGet:
		h.Tree(w, r)
	case action == "queryIdTree" && r.Method == http.MethodGet:
		h.QueryIDTree(w, r)
	case action == "add" && r.Method == http.MethodPost:
		h.Add(w, r)
	case action == "edit" && r.Method == http.MethodPut:
		h.Edit(w, r)
	case action == "resetParentDept" && r.Method == http.MethodPut:
		h.ResetParentDept(w, r)
	case action == "delete" && r.Method == http.MethodDelete:
		h.Delete(w, r)
	case action == "deleteBatch" && r.Method == http.MethodDelete:
		h.DeleteBatch(w, r)
	case action == "remove" && r.Method == http.MethodDelete:
		h.Remove(w, r)
	case action == "export" && r.Method == http.MethodGet:
		h.Export(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Tree returns the department forest, or the flat rows with a showAlert
// attribute when the tree could not place every row.
func (h *DeptHandler) Tree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.DepartmentFilter{
		DeptCode: strings.TrimSpace(q.Get("deptCode")),
		DeptName: strings.TrimSpace(q.Get("deptName")),
	}
	res, err := h.svc.Tree(r.Context(), filter)
	if err != nil {
		h.logger.Error("Query department tree failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("Query department failed!"))
		return
	}

	if res.Mismatch {
		resp := Ok(models.NewQueryResult(res.Flat, res.Total))
		if res.ShowAlert {
			resp = resp.WithAttribute(AttrShowAlert, true)
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, http.StatusOK, Ok(models.NewQueryResult(res.Forest, res.Total)))
}

func (h *DeptHandler) QueryIDTree(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.QueryIDTree(r.Context(), r.URL.Query().Get("disableDeptCode"))
	if err != nil {
		h.logger.Error("Query department id tree failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("Query department failed!"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(list))
}

func (h *DeptHandler) Add(w http.ResponseWriter, r *http.Request) {
	var d domain.Department
	if err := readBodyJSON(r, maxBodyBytes, &d); err != nil {
		writeJSON(w, http.StatusOK, Fail("Save department failed! invalid body"))
		return
	}
	d.ID = ""
	d.CreateBy = operator(r)

	saved, err := h.svc.Add(r.Context(), &d)
	if err != nil {
		h.logger.Error("Save department failed", zap.String("dept_code", d.DeptCode), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(failMessage("Save department failed!", err)))
		return
	}
	writeJSON(w, http.StatusOK, OkMessage("Save department successfully!", saved))
}

func (h *DeptHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var patch domain.DepartmentPatch
	if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
		writeJSON(w, http.StatusOK, Fail("Update department failed! invalid body"))
		return
	}
	patch.UpdateBy = operator(r)

	saved, err := h.svc.Edit(r.Context(), &patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusOK, Fail("Can not found department:"+patch.ID))
			return
		}
		h.logger.Error("Update department failed", zap.String("id", patch.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(failMessage("Update department failed!", err)))
		return
	}
	writeJSON(w, http.StatusOK, OkMessage("Update department successfully!", saved))
}

func (h *DeptHandler) ResetParentDept(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetParentDept(r.Context()); err != nil {
		h.logger.Error("Reset department level failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("Reset department level failed!"))
		return
	}
	writeJSON(w, http.StatusOK, OkMessage[any]("Reset department level successfully!", nil))
}

// Delete soft-deletes (deleted=1) or restores (deleted=0). A missing deleted
// parameter means delete, not restore as in earlier console versions.
func (h *DeptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := strings.TrimSpace(q.Get("id"))
	deleted := parseInt(q.Get("deleted"), 1)
	op := "Delete"
	if deleted == 0 {
		op = "Restore"
	}

	if err := h.svc.SetDeleted(r.Context(), id, deleted); err != nil {
		h.logger.Error(op+" department failed", zap.String("id", id), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(failMessage(op+" department failed!", err)))
		return
	}
	writeJSON(w, http.StatusOK, OkMessage[any](op+" department successfully!", nil))
}

func (h *DeptHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	ids := strings.Split(r.URL.Query().Get("ids"), ",")
	if err := h.svc.DeleteBatch(r.Context(), ids); err != nil {
		h.logger.Error("Batch delete department failed", zap.Strings("ids", ids), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(failMessage("Batch delete department failed!", err)))
		return
	}
	writeJSON(w, http.StatusOK, OkMessage[any]("Batch delete department successfully!", nil))
}

// Remove deletes a department physically. The id is the raw request body;
// a JSON string or ?id= are accepted too.
func (h *DeptHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		raw, err := readRawBody(r)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail("Delete department failed! invalid body"))
			return
		}
		id = strings.Trim(strings.TrimSpace(string(raw)), `"`)
	}

	if err := h.svc.Remove(r.Context(), id); err != nil {
		h.logger.Error("Delete department failed", zap.String("id", id), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(failMessage("Delete department failed!", err)))
		return
	}
	writeJSON(w, http.StatusOK, OkMessage[any]("Delete department successfully!", nil))
}

func (h *DeptHandler) Export(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ExportRows(r.Context())
	if err != nil {
		h.logger.Error("Export departments failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("Export department failed!"))
		return
	}
	data, err := GenerateDepartmentExport(rows)
	if err != nil {
		h.logger.Error("Generate department export failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("Export department failed!"))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=departments.xlsx")
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
