package queue

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestDeliveryAttempt(t *testing.T) {
	tests := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{name: "nil headers", headers: nil, want: 0},
		{name: "missing key", headers: amqp.Table{}, want: 0},
		{name: "int", headers: amqp.Table{"x-retry-count": 3}, want: 3},
		{name: "int32", headers: amqp.Table{"x-retry-count": int32(2)}, want: 2},
		{name: "int64", headers: amqp.Table{"x-retry-count": int64(5)}, want: 5},
		{name: "unexpected type", headers: amqp.Table{"x-retry-count": "4"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deliveryAttempt(tt.headers); got != tt.want {
				t.Fatalf("deliveryAttempt() = %d, want %d", got, tt.want)
			}
		})
	}
}
