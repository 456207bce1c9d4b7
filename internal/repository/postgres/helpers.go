package postgres

import (
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/chiefcousin/toybox/pkg/errors"
)

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func uuidPtrValue(id *uuid.UUID) driver.Valuer {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// isUniqueViolation reports a postgres unique_violation (23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return stderrors.As(err, &pqErr) && pqErr.Code == "23505"
}

func requireRow(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &errors.ErrNotFound{Resource: resource, ID: id}
	}
	return nil
}
