package sqlassets

import _ "embed"

//go:embed schema/schools.sql
var SchoolsSQL string

//go:embed schema/users.sql
var UsersSQL string

//go:embed schema/refresh_tokens.sql
var RefreshTokensSQL string

//go:embed schema/students.sql
var StudentsSQL string

// CoreDDL returns the schema statements in dependency order.
func CoreDDL() []string {
	return []string{SchoolsSQL, UsersSQL, RefreshTokensSQL, StudentsSQL}
}
