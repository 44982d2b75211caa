package client

import (
	"fmt"
	"net/url"
	"strconv"
)

// CreateTransaction sends an offer on a listing. Requires a session; the
// offered user is the caller, the offering user owns the listing.
func (c *Client) CreateTransaction(tx Transaction) (Transaction, error) {
	var created Transaction
	if err := c.do("POST", "/transaction/create", tx, &created); err != nil {
		return Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return created, nil
}

// TransactionByID retrieves one transaction. Requires a session that is a
// party to it.
func (c *Client) TransactionByID(id int) (Transaction, error) {
	var tx Transaction
	if err := c.get("/transaction/transactionId/"+strconv.Itoa(id), &tx); err != nil {
		return Transaction{}, fmt.Errorf("transaction %d: %w", id, err)
	}
	return tx, nil
}

// TransactionsByOfferedUser lists transactions the user initiated, filtered
// by status ("Any" disables the filter).
func (c *Client) TransactionsByOfferedUser(userID int, status string) ([]Transaction, error) {
	if status == "" {
		status = StatusAny
	}
	var txs []Transaction
	err := c.get("/transaction/offered/"+strconv.Itoa(userID)+"/"+url.PathEscape(status), &txs)
	if err != nil {
		return nil, fmt.Errorf("transactions offered by user %d: %w", userID, err)
	}
	return txs, nil
}

// TransactionsByOfferingUser lists transactions on the user's listings,
// filtered by status.
func (c *Client) TransactionsByOfferingUser(userID int, status string) ([]Transaction, error) {
	if status == "" {
		status = StatusAny
	}
	var txs []Transaction
	err := c.get("/transaction/offering/"+strconv.Itoa(userID)+"/"+url.PathEscape(status), &txs)
	if err != nil {
		return nil, fmt.Errorf("transactions offering by user %d: %w", userID, err)
	}
	return txs, nil
}

// TransactionsByListing lists transactions attached to a listing, filtered
// by status.
func (c *Client) TransactionsByListing(listingID int, status string) ([]Transaction, error) {
	if status == "" {
		status = StatusAny
	}
	var txs []Transaction
	err := c.get("/transaction/listing/"+strconv.Itoa(listingID)+"/"+url.PathEscape(status), &txs)
	if err != nil {
		return nil, fmt.Errorf("transactions for listing %d: %w", listingID, err)
	}
	return txs, nil
}

// UpdateTransaction replaces a transaction's mutable fields (status, dates,
// details). Requires a session that is a party to it.
func (c *Client) UpdateTransaction(id int, tx Transaction) error {
	if err := c.do("PUT", "/transaction/update/"+strconv.Itoa(id), tx, nil); err != nil {
		return fmt.Errorf("update transaction %d: %w", id, err)
	}
	return nil
}

// DeleteTransaction withdraws an offer. Requires the session that created it.
func (c *Client) DeleteTransaction(id int) error {
	if err := c.do("DELETE", "/transaction/delete/"+strconv.Itoa(id), nil, nil); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

// TransactionContract fetches the rendered contract text for a transaction.
func (c *Client) TransactionContract(id int) (string, error) {
	var resp struct {
		Contract string `json:"contract"`
	}
	if err := c.get("/transaction/contract/"+strconv.Itoa(id), &resp); err != nil {
		return "", fmt.Errorf("contract for transaction %d: %w", id, err)
	}
	return resp.Contract, nil
}
