// Package finance computes the fixed envelope distributions used by the
// tips wizard and the payroll reports.
package finance

// Budget envelope names shared by the distribution calculators.
const (
	BucketBank      = "bank"
	BucketWallet    = "wallet"
	BucketEducation = "education"
	BucketStocks    = "stocks"
	BucketBusiness  = "business"
	BucketLiving    = "living"
	BucketClothing  = "clothing"
	BucketSavings   = "savings"
	BucketWishlist  = "wishlist"
)

// tipsFixedTotal is the sum of the fixed envelopes below. Amounts under it
// fill the fixed envelopes proportionally; anything above is split by
// percentage.
const tipsFixedTotal = 3600

// TipsDistribution splits a tips total across envelopes. The first 3600
// goes to fixed envelopes (1000 bank, 1000 wallet, 1000 education, 300
// stocks, 300 business), the remainder 50% living, 30% clothing, 20%
// savings. Non-positive amounts yield an all-zero distribution.
func TipsDistribution(total float64) map[string]float64 {
	d := map[string]float64{
		BucketBank:      0,
		BucketWallet:    0,
		BucketEducation: 0,
		BucketStocks:    0,
		BucketBusiness:  0,
		BucketLiving:    0,
		BucketClothing:  0,
		BucketSavings:   0,
	}
	if total <= 0 {
		return d
	}

	ratio := 1.0
	if total < tipsFixedTotal {
		ratio = total / tipsFixedTotal
	}
	d[BucketBank] = 1000 * ratio
	d[BucketWallet] = 1000 * ratio
	d[BucketEducation] = 1000 * ratio
	d[BucketStocks] = 300 * ratio
	d[BucketBusiness] = 300 * ratio

	if remainder := total - tipsFixedTotal; remainder > 0 {
		d[BucketLiving] = remainder * 0.50
		d[BucketClothing] = remainder * 0.30
		d[BucketSavings] = remainder * 0.20
	}
	return d
}

// SaleDistribution splits second-hand sale income: 30% bank, 10% wallet,
// 20% education, 40% wishlist.
func SaleDistribution(amount float64) map[string]float64 {
	return map[string]float64{
		BucketBank:      amount * 0.30,
		BucketWallet:    amount * 0.10,
		BucketEducation: amount * 0.20,
		BucketWishlist:  amount * 0.40,
	}
}

// WageDistribution splits base wage income: 30% bank, 20% education, 40%
// living, 10% wishlist.
func WageDistribution(amount float64) map[string]float64 {
	return map[string]float64{
		BucketBank:      amount * 0.30,
		BucketEducation: amount * 0.20,
		BucketLiving:    amount * 0.40,
		BucketWishlist:  amount * 0.10,
	}
}
