package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/alexiusacademia/gobulb/internal/bulb"
	"github.com/alexiusacademia/gobulb/internal/cache"
	"github.com/alexiusacademia/gobulb/internal/diagram"
	"github.com/alexiusacademia/gobulb/internal/export"
	"github.com/alexiusacademia/gobulb/internal/report"
	"github.com/alexiusacademia/gobulb/internal/soil"
	"github.com/alexiusacademia/gobulb/internal/stress"
	"github.com/alexiusacademia/gobulb/internal/units"
	"github.com/alexiusacademia/gobulb/internal/version"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// isobarLevels are the percentages whose centerline depth /api/bulb reports.
var isobarLevels = []float64{80, 50, 20, 10}

var errBadRequest = errors.New("bad request")

type footingRequest struct {
	Width    float64 `json:"width" validate:"gt=0"`
	Length   float64 `json:"length" validate:"gt=0"`
	Pressure float64 `json:"pressure" validate:"gte=0"`
}

func (f footingRequest) foundation() (soil.Foundation, error) {
	return soil.NewFoundation(f.Width, f.Length, f.Pressure)
}

type soilRequest struct {
	Name         string   `json:"name"`
	UnitWeight   float64  `json:"unit_weight" validate:"gt=0"`
	PoissonRatio *float64 `json:"poisson_ratio" validate:"omitempty,gte=0,lt=0.5"`
}

func (s *soilRequest) soil() (soil.Soil, error) {
	if s == nil {
		return soil.Soil{}, nil
	}
	var opts []soil.SoilOption
	if s.PoissonRatio != nil {
		opts = append(opts, soil.WithPoissonRatio(*s.PoissonRatio))
	}
	return soil.NewSoil(s.Name, s.UnitWeight, opts...)
}

type gridRequest struct {
	DepthRatio float64 `json:"depth_ratio" validate:"omitempty,gt=0"`
	Resolution int     `json:"resolution" validate:"omitempty,gte=2"`
}

type stressRequest struct {
	Foundation footingRequest `json:"foundation"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Z          float64        `json:"z" validate:"gte=0"`
	Method     string         `json:"method" validate:"omitempty,oneof=newmark integration"`
}

type stressResponse struct {
	Stress       float64 `json:"stress"`
	Percent      float64 `json:"percent"`
	Method       string  `json:"method"`
	FallbackUsed bool    `json:"fallback_used"`
}

type pointLoadRequest struct {
	Load float64 `json:"load" validate:"gt=0"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z" validate:"gte=0"`
}

type pointLoadResponse struct {
	Stress float64 `json:"stress"`
	// Influence is σz/Q in 1/m².
	Influence float64 `json:"influence"`
}

type influenceRequest struct {
	Foundation footingRequest `json:"foundation"`
	// Target is a fraction of q; when omitted the standard thresholds are
	// reported.
	Target float64 `json:"target" validate:"omitempty,gt=0,lt=1"`
}

type influenceDepth struct {
	Threshold float64 `json:"threshold"`
	Depth     float64 `json:"depth"`
}

type influenceResponse struct {
	Depths []influenceDepth `json:"depths"`
}

type bulbRequest struct {
	Foundation footingRequest `json:"foundation"`
	Soil       *soilRequest   `json:"soil" validate:"omitempty"`
	Grid       gridRequest    `json:"grid"`
	Method     string         `json:"method" validate:"omitempty,oneof=newmark integration"`
}

type sliceResponse struct {
	Y       float64     `json:"y"`
	X       []float64   `json:"x"`
	Z       []float64   `json:"z"`
	Percent [][]float64 `json:"percent"`
}

type bulbResponse struct {
	ID         string              `json:"id"`
	Shape      [3]int              `json:"shape"`
	Spec       stress.GridSpec     `json:"spec"`
	Soil       bulb.SoilSummary    `json:"soil"`
	MaxStress  float64             `json:"max_stress"`
	DurationMS float64             `json:"duration_ms"`
	Fallbacks  int                 `json:"fallbacks"`
	Smoothed   bool                `json:"smoothed"`
	Isobars    map[string]*float64 `json:"isobars"`
	Slice      sliceResponse       `json:"slice"`
}

type reportRequest struct {
	Foundation footingRequest `json:"foundation"`
	Soil       *soilRequest   `json:"soil" validate:"omitempty"`
	// Grid, when present, adds a computed field to the report.
	Grid    *gridRequest `json:"grid" validate:"omitempty"`
	Method  string       `json:"method" validate:"omitempty,oneof=newmark integration"`
	Units   string       `json:"units"`
	Project string       `json:"project"`
}

type healthResponse struct {
	Status  string       `json:"status"`
	Version version.Info `json:"version"`
	Cache   cache.Stats  `json:"cache"`
}

type errorResponse struct {
	Error string `json:"error"`
	Param string `json:"param,omitempty"`
}

func (s *Server) stressAt(w http.ResponseWriter, r *http.Request) {
	var req stressRequest
	if !s.decode(w, r, &req) {
		return
	}
	f, err := req.Foundation.foundation()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	method, err := s.methodOf(req.Method)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.engine.StressAt(f, req.X, req.Y, req.Z, method)
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, stressResponse{
		Stress:       res.Value,
		Percent:      percent(res.Value, f.Pressure()),
		Method:       string(method),
		FallbackUsed: res.FallbackUsed,
	})
}

func (s *Server) pointLoad(w http.ResponseWriter, r *http.Request) {
	var req pointLoadRequest
	if !s.decode(w, r, &req) {
		return
	}
	v, err := s.engine.PointLoadAt(req.Load, req.X, req.Y, req.Z)
	if err != nil {
		if !errors.Is(err, stress.ErrSingular) {
			err = fmt.Errorf("%w: %w", errBadRequest, err)
		}
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pointLoadResponse{Stress: v, Influence: v / req.Load})
}

func (s *Server) influenceDepth(w http.ResponseWriter, r *http.Request) {
	var req influenceRequest
	if !s.decode(w, r, &req) {
		return
	}
	f, err := req.Foundation.foundation()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	targets := report.Thresholds
	if req.Target > 0 {
		targets = []float64{req.Target}
	}
	resp := influenceResponse{Depths: make([]influenceDepth, 0, len(targets))}
	for _, t := range targets {
		z, err := s.engine.InfluenceDepth(f, t)
		if err != nil {
			s.fail(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
			return
		}
		resp.Depths = append(resp.Depths, influenceDepth{Threshold: t, Depth: z})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) bulb(w http.ResponseWriter, r *http.Request) {
	var req bulbRequest
	if !s.decode(w, r, &req) {
		return
	}
	field, err := s.computeField(r.Context(), req.Foundation, req.Soil, req.Grid, req.Method)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	meta := field.Metadata()
	nx, ny, nz := field.Shape()
	isobars := make(map[string]*float64, len(isobarLevels))
	for _, pct := range isobarLevels {
		var depth *float64
		if z := field.IsobarDepth(pct); !math.IsNaN(z) {
			depth = &z
		}
		isobars[fmt.Sprintf("%g", pct)] = depth
	}
	slice := field.CenterSlice()
	writeJSON(w, http.StatusOK, bulbResponse{
		ID:         field.ID().String(),
		Shape:      [3]int{nx, ny, nz},
		Spec:       meta.Spec,
		Soil:       meta.Soil,
		MaxStress:  field.Max(),
		DurationMS: float64(meta.Duration.Microseconds()) / 1000,
		Fallbacks:  meta.Fallbacks,
		Smoothed:   meta.Smoothed,
		Isobars:    isobars,
		Slice:      sliceResponse{Y: slice.Y, X: slice.X, Z: slice.Z, Percent: slice.Percent},
	})
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if !s.decode(w, r, &req) {
		return
	}
	f, err := req.Foundation.foundation()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sys, err := units.Parse(req.Units)
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	method, err := s.methodOf(req.Method)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	opts := []report.Option{report.WithMethod(method)}
	if req.Soil != nil {
		sl, err := req.Soil.soil()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		opts = append(opts, report.WithSoil(sl))
	}
	var field *bulb.StressField
	if req.Grid != nil {
		field, err = s.computeField(r.Context(), req.Foundation, req.Soil, *req.Grid, req.Method)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		opts = append(opts, report.WithField(field))
	}
	rep, err := report.Build(f, opts...)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if !wantsPDF(r) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := (report.Formatter{Units: sys}).WriteText(w, rep); err != nil {
			s.logger.Error("write report", slog.Any("error", err))
		}
		return
	}

	pdfOpts := export.PDFOptions{Project: req.Project, Units: sys}
	if field != nil {
		png, err := diagram.RenderIsobars(field.CenterSlice(), f, "png")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		pdfOpts.Figures = append(pdfOpts.Figures, export.Figure{Title: "Isobars, section y = 0", PNG: png})
	}
	var buf bytes.Buffer
	if err := export.WritePDF(&buf, rep, pdfOpts); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename("stress_bulb_report", "pdf", rep.GeneratedAt)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("write pdf", slog.Any("error", err))
	}
}

func (s *Server) computeField(ctx context.Context, fr footingRequest, sr *soilRequest, gr gridRequest, name string) (*bulb.StressField, error) {
	f, err := fr.foundation()
	if err != nil {
		return nil, err
	}
	sl, err := sr.soil()
	if err != nil {
		return nil, err
	}
	method, err := s.methodOf(name)
	if err != nil {
		return nil, err
	}
	spec := stress.DefaultGridSpec()
	spec.Method = method
	if gr.DepthRatio > 0 {
		spec.DepthRatio = gr.DepthRatio
	}
	if gr.Resolution > 0 {
		spec.Resolution = gr.Resolution
	}
	return s.engine.Compute(ctx, f, sl, spec)
}

func (s *Server) methodOf(name string) (stress.Method, error) {
	if strings.TrimSpace(name) == "" {
		return s.method, nil
	}
	m, err := stress.ParseMethod(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return m, nil
}

// decode reads and validates a JSON body, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		writeError(w, http.StatusBadRequest, "invalid request payload: "+err.Error(), "")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		s.fail(w, r, err)
		return false
	}
	return true
}

// fail maps an error to its HTTP status.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		limitErr *bulb.ResourceLimitError
		soilErr  *soil.ValidationError
		singular *stress.SingularityError
		fieldErr validator.ValidationErrors
	)
	status := http.StatusInternalServerError
	param := ""
	msg := err.Error()
	switch {
	case errors.As(err, &limitErr):
		status = http.StatusUnprocessableEntity
		param = limitErr.Param
	case errors.As(err, &singular):
		status = http.StatusUnprocessableEntity
		param = "point"
	case errors.As(err, &soilErr):
		status = http.StatusBadRequest
		param = soilErr.Field
	case errors.As(err, &fieldErr):
		status = http.StatusBadRequest
		param = fieldName(fieldErr[0])
		msg = describe(fieldErr[0])
	case errors.Is(err, errBadRequest), errors.Is(err, stress.ErrInvalidGrid):
		status = http.StatusBadRequest
		msg = strings.TrimPrefix(msg, errBadRequest.Error()+": ")
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		msg = "computation timed out"
	case errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
		msg = "request cancelled"
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	writeError(w, status, msg, param)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldName is the JSON path of fe without the request type, e.g.
// "foundation.width".
func fieldName(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	return field
}

func describe(fe validator.FieldError) string {
	field := fieldName(fe)
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s must be %s %s, got %v", field, fe.Tag(), fe.Param(), fe.Value())
	}
}

func wantsPDF(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == "application/pdf" {
			return true
		}
	}
	return false
}

func percent(v, q float64) float64 {
	if q == 0 {
		return 0
	}
	return 100 * v / q
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, param string) {
	writeJSON(w, status, errorResponse{Error: msg, Param: param})
}
