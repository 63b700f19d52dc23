package client

import "fmt"

const (
	EndpointAuthMessage  = "/v1/auth/message"
	EndpointAuth         = "/v1/auth"
	EndpointOrders       = "/v1/orders"
	EndpointCancelOrders = "/v1/orders/cancel"
	EndpointPositions    = "/v1/positions"
	EndpointMarkets      = "/v1/markets"
)

func endpointOrderByHash(hash string) string {
	return fmt.Sprintf("%s/%s", EndpointOrders, hash)
}

func endpointMarketByID(id int64) string {
	return fmt.Sprintf("%s/%d", EndpointMarkets, id)
}
