package utils

import "math"

// math.go - арифметика JPY-стоимости сделки
//
// Назначение:
// Вспомогательные функции для расчёта цены и маржи в целых йенах,
// используемые scoring-пакетом (деление с полом для комиссии площадки,
// округление процента маржи до одного знака).
//
// Функции:
// - FloorPercentage: floor(amount * pct / 100) — целочисленная комиссия
// - RoundToOneDecimal: округление float до 1 знака после запятой
// - CalculateAmazonPrice: цена листинга по целевой марже (см. spec.md сценарий 5)

// FloorPercentage возвращает floor(amount * pct / 100), целое число йен.
// Используется для amazon_fee = floor(sell_price * fee_pct / 100).
func FloorPercentage(amount int, pct float64) int {
	if amount <= 0 || pct <= 0 {
		return 0
	}
	return int(math.Floor(float64(amount) * pct / 100))
}

// RoundToOneDecimal округляет значение до одного знака после запятой
// (используется для gross_margin_pct).
func RoundToOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

// CalculateAmazonPrice вычисляет цену листинга, при которой после вычета
// комиссии площадки и издержек достигается заданная маржа (в процентах от
// цены продажи), и округляет результат вверх до ближайших 10 йен — листинги
// на площадке традиционно оканчиваются на круглые 10 йен.
//
// price*(1 - margin/100 - fee/100) = yahooPrice + yahooShipping
// => price = (yahooPrice+yahooShipping) / (1 - margin/100 - fee/100)
func CalculateAmazonPrice(yahooPrice, yahooShipping int, marginPct, feePct float64) int {
	denom := 1 - marginPct/100 - feePct/100
	if denom <= 0 {
		return 0
	}
	raw := float64(yahooPrice+yahooShipping) / denom
	return int(math.Ceil(raw/10)) * 10
}
