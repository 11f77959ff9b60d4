package server

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"internmatch/internal/cleaning"
	apperrors "internmatch/internal/errors"
	"internmatch/internal/textutil"
	"internmatch/internal/types"
	"internmatch/internal/utils"
)

const (
	parseModeQuick = "quick"
	parseModeDeep  = "deep"
)

// matchHandler runs the recommendation pipeline for one student
func (s *Server) matchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "api.match")
	defer span.End()

	var req types.MatchRequest
	if err := s.decodeJSON(r, &req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		s.writeAppError(w, r, err, "Invalid match request")
		return
	}

	span.SetAttributes(
		attribute.Int("request.internships", len(req.Internships)),
		attribute.Int("request.skills", len(req.Student.Skills)),
		attribute.String("request.work_preference", req.WorkPreference),
	)

	resp, err := s.deps.Matcher.Match(ctx, req)
	if err != nil {
		span.RecordError(err)
		if apperrors.IsType(err, apperrors.ErrorTypeAI) {
			span.SetAttributes(attribute.String("error.type", "ai"))
		}
		s.writeAppError(w, r, err, "Failed to match internships")
		return
	}

	span.SetAttributes(
		attribute.Int("response.returned", resp.Meta.Returned),
		attribute.String("response.rerank_source", resp.Meta.RerankSource),
	)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: resp.Results, Meta: resp.Meta})
}

// parseResumeHandler runs the local keyword parser. It accepts JSON or a
// multipart upload with a "resume" file (text or PDF) and optional "skills".
func (s *Server) parseResumeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "api.parse_resume")
	defer span.End()

	req, err := s.readResumeRequest(r)
	if err != nil {
		span.RecordError(err)
		s.deps.Metrics.RecordResumeParsed(ctx, parseModeQuick, err)
		s.writeAppError(w, r, err, "Invalid resume")
		return
	}

	parsed := s.deps.Matcher.ParseResume(req.ResumeText, req.Skills)
	s.deps.Metrics.RecordResumeParsed(ctx, parseModeQuick, nil)
	span.SetAttributes(
		attribute.Int("request.resume_length", len(req.ResumeText)),
		attribute.Int("response.skills", len(parsed.Skills)),
	)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: parsed})
}

// analyzeResumeHandler runs the deep, generator-backed resume analysis
func (s *Server) analyzeResumeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "api.analyze_resume")
	defer span.End()

	req, err := s.readResumeRequest(r)
	if err == nil {
		err = s.validateStruct(&AnalyzeResumeRequest{ResumeText: req.ResumeText})
	}
	if err != nil {
		span.RecordError(err)
		s.deps.Metrics.RecordResumeParsed(ctx, parseModeDeep, err)
		s.writeAppError(w, r, err, "Invalid resume")
		return
	}

	profile, err := s.deps.DeepParser.Parse(ctx, req.ResumeText)
	s.deps.Metrics.RecordResumeParsed(ctx, parseModeDeep, err)
	if err != nil {
		span.RecordError(err)
		s.writeAppError(w, r, err, "Failed to analyze resume")
		return
	}

	span.SetAttributes(
		attribute.String("response.source", profile.Source),
		attribute.Int("response.skills", len(profile.ExtractedSkills)),
	)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: profile})
}

// readResumeRequest decodes a resume from JSON or a multipart upload
func (s *Server) readResumeRequest(r *http.Request) (ParseResumeRequest, error) {
	var req ParseResumeRequest
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err := s.decodeJSON(r, &req)
		return req, err
	}

	if err := r.ParseMultipartForm(s.multipartMemory()); err != nil {
		return req, apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, "invalid multipart form", err)
	}
	file, header, err := r.FormFile("resume")
	if err != nil {
		return req, apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, "multipart field 'resume' is required", err)
	}
	defer func() { _ = file.Close() }()

	text, err := readUploadedResume(file, header)
	if err != nil {
		return req, err
	}
	req.ResumeText = text
	if raw := r.FormValue("skills"); raw != "" {
		req.Skills = textutil.SplitSkills(raw)
	}
	return req, s.validateStruct(&req)
}

func readUploadedResume(file multipart.File, header *multipart.FileHeader) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", apperrors.NewIOError(apperrors.ErrCodeFileNotReadable, "failed to read uploaded resume", err)
	}
	if utils.IsPDFFile(header.Filename) || utils.LooksLikePDF(data) {
		text, err := utils.ExtractPDFText(data)
		if err != nil {
			return "", apperrors.NewValidationError(apperrors.ErrCodeInvalidFormat,
				"could not extract text from PDF", err).WithContext("filename", header.Filename)
		}
		return text, nil
	}
	return string(data), nil
}

func (s *Server) multipartMemory() int64 {
	if s.MaxRequestSize > 0 {
		return s.MaxRequestSize
	}
	return 10 << 20
}

// cleanDataHandler normalizes scraped items. Batches above the threshold
// are accepted with 202 and cleaned in the background.
func (s *Server) cleanDataHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "api.clean_data")
	defer span.End()

	var req CleanDataRequest
	if err := s.decodeJSON(r, &req); err != nil {
		span.RecordError(err)
		s.writeAppError(w, r, err, "Invalid clean-data request")
		return
	}
	span.SetAttributes(attribute.Int("request.items", len(req.Items)))

	if len(req.Items) > s.CleanBatchThreshold {
		jobID := uuid.NewString()
		s.startCleanJob(jobID, req.Items)
		span.SetAttributes(attribute.String("clean.job_id", jobID))
		writeJSON(w, http.StatusAccepted, SuccessResponse{
			Success: true,
			Message: "Task queued for background processing",
			JobID:   jobID,
		})
		return
	}

	cleaned, err := cleaning.CleanAll(ctx, req.Items, s.CleanWorkers)
	if err != nil {
		span.RecordError(err)
		s.writeAppError(w, r, apperrors.NewInternalError("CLEAN_FAILED", "cleaning was interrupted", err), "Failed to clean data")
		return
	}
	s.deps.Metrics.RecordItemsCleaned(ctx, "sync", len(cleaned))
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: cleaned})
}

// startCleanJob cleans items off the request path. Shutdown waits for it.
func (s *Server) startCleanJob(jobID string, items []types.CleanItem) {
	ctx := s.backgroundContext()
	logger := s.Logger.With("job_id", jobID, "items", len(items))
	logger.Info("Starting background cleaning")

	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		start := time.Now()

		cleaned, err := cleaning.CleanAll(ctx, items, s.CleanWorkers)
		if err != nil {
			logger.LogError(err, "Background cleaning aborted")
			return
		}
		s.deps.Metrics.RecordItemsCleaned(ctx, "background", len(cleaned))
		logger.Info("Background cleaning complete", "duration", time.Since(start).String())
	}()
}

func (s *Server) backgroundContext() context.Context {
	if s.bgCtx != nil {
		return s.bgCtx
	}
	return context.Background()
}

// WaitForJobs blocks until background jobs finish or ctx expires
func (s *Server) WaitForJobs(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.jobs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("background jobs still running: %w", ctx.Err())
	}
}
