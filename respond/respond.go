package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Postgres SQLSTATE codes remapped by Resolve.
const (
	pgUniqueViolation           = "23505"
	pgInvalidTextRepresentation = "22P02"
)

const (
	msgInternal     = "Internal Server Error"
	msgInvalidID    = "Resource not found. Invalid: id"
	msgJWTExpired   = "JSON Web Token is expired. Try Again!!!"
	msgJWTInvalid   = "JSON Web Token is invalid. Try Again!!!"
	msgBodyTooLarge = "Request body too large"
)

// Responder renders envelopes and logs server-side failures.
type Responder struct {
	logger *zap.Logger
}

// New returns a Responder. A nil logger disables logging.
func New(logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{logger: logger}
}

// JSON writes payload with success set according to status.
func (rs *Responder) JSON(w http.ResponseWriter, status int, payload map[string]any) {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = status < http.StatusBadRequest

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rs.logger.Debug("response write failed", zap.Error(err))
	}
}

// OK writes a 200 envelope.
func (rs *Responder) OK(w http.ResponseWriter, payload map[string]any) {
	rs.JSON(w, http.StatusOK, payload)
}

// Created writes a 201 envelope.
func (rs *Responder) Created(w http.ResponseWriter, payload map[string]any) {
	rs.JSON(w, http.StatusCreated, payload)
}

// Error maps err onto a status and message and writes the failure envelope.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, message := Resolve(err)
	if status >= http.StatusInternalServerError {
		rs.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	rs.JSON(w, status, map[string]any{"message": message})
}

// Resolve returns the HTTP status and client message for err.
func Resolve(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, msgInternal
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return http.StatusBadRequest, "Duplicate " + duplicateField(pgErr) + " entered"
		case pgInvalidTextRepresentation:
			return http.StatusNotFound, msgInvalidID
		}
	}
	if errors.Is(err, lmsAuth.ErrMalformedID) {
		return http.StatusNotFound, msgInvalidID
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return http.StatusBadRequest, msgJWTExpired
	}
	if isJWTError(err) {
		return http.StatusBadRequest, msgJWTInvalid
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, msgBodyTooLarge
	}

	var typed *lmsAuth.Error
	if errors.As(err, &typed) {
		return typed.Kind.Status(), typed.Message
	}
	return http.StatusInternalServerError, msgInternal
}

func isJWTError(err error) bool {
	for _, target := range []error{
		jwt.ErrTokenMalformed,
		jwt.ErrTokenUnverifiable,
		jwt.ErrTokenSignatureInvalid,
		jwt.ErrTokenInvalidClaims,
		jwt.ErrTokenNotValidYet,
		jwt.ErrTokenUsedBeforeIssued,
		jwt.ErrTokenInvalidIssuer,
		jwt.ErrTokenRequiredClaimMissing,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// duplicateField extracts the column from a detail like
// `Key (email)=(a@b.c) already exists.`.
func duplicateField(pgErr *pgconn.PgError) string {
	detail := pgErr.Detail
	if start := strings.Index(detail, "Key ("); start >= 0 {
		rest := detail[start+len("Key ("):]
		if end := strings.Index(rest, ")"); end > 0 {
			return rest[:end]
		}
	}
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	return "value"
}
