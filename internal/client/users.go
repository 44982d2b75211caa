package client

import (
	"fmt"
	"strconv"
)

// UserByID retrieves one user's public profile.
func (c *Client) UserByID(id int) (User, error) {
	var user User
	if err := c.get("/user/userId/"+strconv.Itoa(id), &user); err != nil {
		return User{}, fmt.Errorf("user %d: %w", id, err)
	}
	return user, nil
}

// CreateUser registers a new account. The server geocodes the location into
// city and country.
func (c *Client) CreateUser(user User, password string) (User, error) {
	payload := struct {
		User
		Password string `json:"password"`
	}{user, password}

	var created User
	if err := c.do("POST", "/user/create", payload, &created); err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}
