package numbers

import (
	"encoding/json"
	"errors"
	"net/http"

	"numgate/internal/auth"
)

const maxJSONBodyBytes = 1 << 20

// Handler serves the operations. Every method has the auth.ProtectedHandlerFunc
// shape, so it can only be mounted through auth.Gate.Require.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type numbersRequest struct {
	Numbers []int `json:"numbers"`
}

type searchRequest struct {
	Numbers []int `json:"numbers"`
	Target  *int  `json:"target"`
}

type sortResponse struct {
	Numbers []int `json:"numbers"`
}

type evenResponse struct {
	EvenNumbers []int `json:"even_numbers"`
}

type sumResponse struct {
	Sum int `json:"sum"`
}

type maxResponse struct {
	Max int `json:"max"`
}

func (h *Handler) Sort(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	input, ok := parseNumbers(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, sortResponse{Numbers: Sort(input.Numbers)})
}

func (h *Handler) FilterEven(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	input, ok := parseNumbers(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, evenResponse{EvenNumbers: FilterEven(input.Numbers)})
}

func (h *Handler) Sum(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	input, ok := parseNumbers(w, r)
	if !ok {
		return
	}

	total, err := Sum(input.Numbers)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sumResponse{Sum: total})
}

func (h *Handler) Max(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	input, ok := parseNumbers(w, r)
	if !ok {
		return
	}

	largest, err := Max(input.Numbers)
	if err != nil {
		if errors.Is(err, ErrEmptyInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to compute max")
		return
	}

	writeJSON(w, http.StatusOK, maxResponse{Max: largest})
}

func (h *Handler) BinarySearch(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	var input searchRequest
	if !decodeBody(w, r, &input) {
		return
	}
	if input.Numbers == nil {
		writeError(w, http.StatusBadRequest, "numbers is required")
		return
	}
	if input.Target == nil {
		writeError(w, http.StatusBadRequest, "target is required")
		return
	}

	writeJSON(w, http.StatusOK, BinarySearch(input.Numbers, *input.Target))
}

func parseNumbers(w http.ResponseWriter, r *http.Request) (numbersRequest, bool) {
	var input numbersRequest
	if !decodeBody(w, r, &input) {
		return numbersRequest{}, false
	}
	// A missing or null field decodes to nil; [] decodes to an empty slice.
	if input.Numbers == nil {
		writeError(w, http.StatusBadRequest, "numbers is required")
		return numbersRequest{}, false
	}

	return input, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
