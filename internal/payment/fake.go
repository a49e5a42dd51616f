package payment

import (
	"context"
	"fmt"
)

// FakeClient is a test implementation of IntentClient.
type FakeClient struct {
	Calls []Intent
	Err   error
}

func NewFakeClient() *FakeClient {
	return &FakeClient{}
}

func (c *FakeClient) CreateIntent(ctx context.Context, amount float64, currency string) (Intent, error) {
	if c.Err != nil {
		return Intent{}, c.Err
	}
	in := Intent{
		ID:           fmt.Sprintf("pi_fake_%d", len(c.Calls)+1),
		ClientSecret: fmt.Sprintf("pi_fake_%d_secret", len(c.Calls)+1),
		Amount:       amount,
	}
	c.Calls = append(c.Calls, in)
	return in, nil
}
