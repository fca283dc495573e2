package domain

import "fmt"

// Client is a gym member as stored in the clients table. A Client with a zero
// ID has not been persisted yet; the store assigns the ID on insert.
type Client struct {
	ID             int64  `db:"id"`
	Name           string `db:"name"`
	Surname        string `db:"surname"`
	MembershipCode int    `db:"membership_code"`
}

func NewClient(name, surname string, membershipCode int) *Client {
	return &Client{
		Name:           name,
		Surname:        surname,
		MembershipCode: membershipCode,
	}
}

// IsPersistent reports whether the store has assigned an ID.
func (c *Client) IsPersistent() bool {
	return c.ID > 0
}

func (c *Client) String() string {
	return fmt.Sprintf("Client #%d: %s %s (membership code %d)", c.ID, c.Name, c.Surname, c.MembershipCode)
}
