package models

import "golang.org/x/crypto/bcrypt"

// User is a restaurant owner account. Diners never log in; they are
// identified only by the order session number they share at the table.
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
}

// HashPassword hashes the user's password
func (u *User) HashPassword(password string) error {
	passwordInBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(passwordInBytes)
	return nil
}

// CheckPassword checks if the provided password matches the user's password
func (u *User) CheckPassword(providedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(providedPassword))
}
