package database

import "database/sql"

// NullStringToPtr converts a sql.NullString to a pointer (nil if not valid)
func NullStringToPtr(n sql.NullString) *string {
	if n.Valid {
		return &n.String
	}
	return nil
}

// NullInt64ToPtr converts a sql.NullInt64 to a pointer (nil if not valid)
func NullInt64ToPtr(n sql.NullInt64) *int64 {
	if n.Valid {
		return &n.Int64
	}
	return nil
}

// PtrToNullString converts a string pointer to a sql.NullString
func PtrToNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// PtrToNullInt64 converts an int64 pointer to a sql.NullInt64
func PtrToNullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}
