package services

// Services defined in this package:
// - StudentService: owner-scoped student CRUD behind the record validator
// - AuthService: sign-up, login, current session and logout over the session provider
