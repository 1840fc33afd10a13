// Package money holds fixed-point currency amounts and unit conversion.
package money

import (
	"errors"
	"fmt"
	"math/big"
)

// MinorPerMajor is the number of minor units in one major unit.
const MinorPerMajor = 100

// Amount is a currency value in minor units (two implied decimals).
type Amount int64

// Major builds an amount from whole currency units.
func Major(n int64) Amount { return Amount(n * MinorPerMajor) }

func (a Amount) MulInt(n int64) Amount { return a * Amount(n) }

// MulDiv computes a*num/den truncating toward zero without intermediate overflow.
func (a Amount) MulDiv(num, den int64) Amount {
	if den == 0 {
		return 0
	}
	r := new(big.Int).Mul(big.NewInt(int64(a)), big.NewInt(num))
	r.Quo(r, big.NewInt(den))
	return Amount(r.Int64())
}

func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/MinorPerMajor, v%MinorPerMajor)
}

// Converter turns local-currency figures (the unit salaries and plans are quoted
// in) into the ledger's native value unit.
type Converter interface {
	ToLedger(local Amount) Amount
}

// RateConverter applies a fixed rational rate: ledger = local * Num / Den.
type RateConverter struct {
	Num int64
	Den int64
}

var ErrInvalidRate = errors.New("money: conversion rate must be positive")

func NewRateConverter(num, den int64) (RateConverter, error) {
	if num <= 0 || den <= 0 {
		return RateConverter{}, ErrInvalidRate
	}
	return RateConverter{Num: num, Den: den}, nil
}

// Identity treats local and ledger units as the same.
func Identity() RateConverter { return RateConverter{Num: 1, Den: 1} }

func (c RateConverter) ToLedger(local Amount) Amount { return local.MulDiv(c.Num, c.Den) }
