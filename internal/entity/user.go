package entity

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `json:"-"`
	IsStaff      bool   `json:"is_staff"`
}

/*
Mysql Schema:
CREATE TABLE users (
	id INT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(150) NOT NULL UNIQUE,
	email VARCHAR(254) NOT NULL UNIQUE,
	first_name VARCHAR(150) NOT NULL,
	last_name VARCHAR(150) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	is_staff BOOLEAN NOT NULL DEFAULT FALSE
);
*/
