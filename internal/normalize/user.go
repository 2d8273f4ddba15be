package normalize

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"invadmin/internal/models"
	"invadmin/internal/sheet"
)

// UserNormalizer convierte filas del CSV de empleados en models.User
type UserNormalizer struct {
	Aliases      sheet.AliasTable
	EmailDomain  string
	Role         string
	PasswordHash string
}

// NewUserNormalizer crea un normalizador. La contraseña por defecto se hashea
// una sola vez por ejecución y se comparte entre todos los usuarios.
func NewUserNormalizer(aliases sheet.AliasTable, emailDomain, role, defaultPassword string) (*UserNormalizer, error) {
	hash, err := HashPassword(defaultPassword)
	if err != nil {
		return nil, err
	}
	return &UserNormalizer{
		Aliases:      aliases,
		EmailDomain:  emailDomain,
		Role:         role,
		PasswordHash: hash,
	}, nil
}

// Normalize produce el documento de usuario de una fila
func (n *UserNormalizer) Normalize(row sheet.RawRow) (models.User, error) {
	get := func(field string) sheet.Cell {
		c, _ := row.Get(n.Aliases.For(field))
		return c
	}

	name := String(get("name"))
	if name == nil {
		return models.User{}, ErrMissingName
	}

	return models.User{
		Name:       *name,
		Email:      DeriveEmail(*name, n.EmailDomain),
		Password:   n.PasswordHash,
		Role:       n.Role,
		CodeNo:     String(get("code_no")),
		Department: String(get("department")),
	}, nil
}

// DeriveEmail genera el email a partir del nombre: minúsculas y cada espacio
// reemplazado por un punto.
func DeriveEmail(name, domain string) string {
	local := strings.ReplaceAll(strings.ToLower(name), " ", ".")
	return fmt.Sprintf("%s@%s", local, domain)
}

// HashPassword función auxiliar para hashear contraseñas
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hashedBytes), nil
}
