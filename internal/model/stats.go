package model

import "github.com/shopspring/decimal"

type DashboardStats struct {
	TotalUsers         int             `json:"totalUsers"`
	TotalVolume        decimal.Decimal `json:"totalVolume"`
	PendingWithdrawals int             `json:"pendingWithdrawals"`
}

type DetailedStats struct {
	TotalUsers           int             `json:"totalUsers"`
	TotalDeposits        decimal.Decimal `json:"totalDeposits"`
	TotalWithdrawals     decimal.Decimal `json:"totalWithdrawals"`
	TotalProfits         decimal.Decimal `json:"totalProfits"`
	TotalInvestments     decimal.Decimal `json:"totalInvestments"`
	PendingDeposits      int             `json:"pendingDeposits"`
	PendingWithdrawals   int             `json:"pendingWithdrawals"`
	ActiveInvestments    int             `json:"activeInvestments"`
	CompletedInvestments int             `json:"completedInvestments"`
}
