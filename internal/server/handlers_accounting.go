package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ogulcanaydogan/focusboard/pkg/gateway"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
	"github.com/ogulcanaydogan/focusboard/pkg/taxsim"
)

func (s *Server) yearParam(r *http.Request) (int, error) {
	return intParam(r, "year", s.engine.CurrentYear(), 1900, 9999)
}

func (s *Server) handleKPI(w http.ResponseWriter, r *http.Request) {
	uid, err := ownerParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	year, err := s.yearParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	kpi, err := s.engine.ComputeKPI(r.Context(), uid, year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, kpi)
}

func (s *Server) handleMonthlyData(w http.ResponseWriter, r *http.Request) {
	uid, err := ownerParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	year, err := s.yearParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	months, err := s.engine.ComputeMonthlyBreakdown(r.Context(), uid, year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, months)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.engine.Settings(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BlueReturnDeduction  *int64 `json:"blueReturnDeduction"`
		DependentIncomeLimit *int64 `json:"dependentIncomeLimit"`
	}
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	uid := userID(r.Context())
	settings, err := s.engine.Settings(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.BlueReturnDeduction != nil {
		settings.BlueReturnDeduction = *body.BlueReturnDeduction
	}
	if body.DependentIncomeLimit != nil {
		settings.DependentIncomeLimit = *body.DependentIncomeLimit
	}
	if settings.BlueReturnDeduction < 0 || settings.DependentIncomeLimit < 0 {
		s.writeError(w, r, model.Errorf(model.ErrValidation, "deduction and limit must not be negative"))
		return
	}

	if err := s.accounting.SetAccountingSettings(r.Context(), &settings); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type transactionRequest struct {
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	ReceiptID   string `json:"receiptId"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var body transactionRequest
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Category != model.CategoryIncome && body.Category != model.CategoryExpense {
		s.writeError(w, r, model.Errorf(model.ErrValidation, "category must be %s or %s",
			model.CategoryIncome, model.CategoryExpense))
		return
	}
	if body.Amount < 0 {
		s.writeError(w, r, model.Errorf(model.ErrValidation, "amount must not be negative"))
		return
	}
	date, err := model.ParseDate(body.Date, s.engine.Location())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	tx := &model.Transaction{
		UserID:      userID(r.Context()),
		Date:        date,
		Category:    body.Category,
		Description: strings.TrimSpace(body.Description),
		Amount:      body.Amount,
		ReceiptID:   body.ReceiptID,
	}
	if err := s.accounting.CreateTransaction(r.Context(), tx); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// amount accepts a JSON number or a numeric string.
type amount int64

func (a *amount) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(data, `"`))
	n, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
	if err != nil {
		return model.Errorf(model.ErrValidation, "annualIncome must be numeric")
	}
	*a = amount(n)
	return nil
}

type simulateRequest struct {
	AnnualIncome *amount `json:"annualIncome"`
	Kind         string  `json:"kind"`
	Incomes      []struct {
		Kind   string `json:"kind"`
		Amount amount `json:"amount"`
	} `json:"incomes"`
}

func (s *Server) handleSimulateDependent(w http.ResponseWriter, r *http.Request) {
	var body simulateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodySize))
	if err := dec.Decode(&body); err != nil {
		if !errors.Is(err, model.ErrValidation) {
			err = model.Errorf(model.ErrValidation, "invalid request body: %v", err)
		}
		s.writeError(w, r, err)
		return
	}

	if len(body.Incomes) > 0 {
		incomes := make([]taxsim.Income, 0, len(body.Incomes))
		for _, in := range body.Incomes {
			incomes = append(incomes, taxsim.Income{Kind: taxsim.Kind(in.Kind), Amount: int64(in.Amount)})
		}
		res, err := s.taxsim.SimulateMultipleIncomes(incomes)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}

	if body.AnnualIncome == nil {
		s.writeError(w, r, model.Errorf(model.ErrValidation, "annualIncome is required"))
		return
	}
	res, err := s.taxsim.SimulateDependent(int64(*body.AnnualIncome), taxsim.Kind(body.Kind))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.gateway.ListReceipts(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}

func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TransactionID string `json:"transactionId"`
		ImagePath     string `json:"imagePath"`
		OCR           *struct {
			StoreName   string `json:"storeName"`
			Date        string `json:"date"`
			TotalAmount int64  `json:"totalAmount"`
			TaxAmount   int64  `json:"taxAmount"`
			RawText     string `json:"rawText"`
		} `json:"ocrData"`
	}
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	in := gateway.ReceiptInput{TransactionID: body.TransactionID, ImagePath: body.ImagePath}
	if body.OCR != nil {
		ocr := &model.OcrData{
			StoreName:   body.OCR.StoreName,
			TotalAmount: body.OCR.TotalAmount,
			TaxAmount:   body.OCR.TaxAmount,
			RawText:     body.OCR.RawText,
		}
		if body.OCR.Date != "" {
			d, err := model.ParseDate(body.OCR.Date, s.engine.Location())
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			ocr.Date = &d
		}
		in.OCR = ocr
	}

	res, err := s.gateway.UploadReceipt(r.Context(), userID(r.Context()), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
