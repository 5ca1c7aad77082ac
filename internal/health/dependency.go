package health

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/veritrace/veritrace/internal/chain"
)

type DBChecker struct {
	db *gorm.DB
}

func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &DBChecker{db: db}
}

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "db", Healthy: true}
	if c.db == nil {
		res.Healthy = false
		res.Error = "db not configured"
		return res
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}

type RedisChecker struct {
	client redis.UniversalClient
}

func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "redis", Healthy: true}
	if c.client == nil {
		res.Healthy = false
		res.Error = "redis not configured"
		return res
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}

// ChainChecker verifies the RPC endpoint is reachable and serving the
// configured network.
type ChainChecker struct {
	gateway chain.Gateway
}

func NewChainChecker(gateway chain.Gateway) Checker {
	if gateway == nil {
		return nil
	}
	return &ChainChecker{gateway: gateway}
}

func (c *ChainChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "chain", Healthy: true}
	if c.gateway == nil {
		res.Healthy = false
		res.Error = "chain gateway not configured"
		return res
	}
	if err := c.gateway.Ping(ctx); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}
