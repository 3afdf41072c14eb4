package domain

// Delivery fee schedule. A method has a base fee; a few regions carry a
// fixed per-method band that overrides the base, and every other region
// pays base plus a flat remote surcharge.
const remoteSurcharge = 250

var baseFees = map[DeliveryMethod]float64{
	DeliveryStandard: 50,
	DeliveryPriority: 100,
}

var regionFees = map[string]map[DeliveryMethod]float64{
	"Metro Manila": {
		DeliveryStandard: 50,
		DeliveryPriority: 100,
	},
	"Calabarzon": {
		DeliveryStandard: 75,
		DeliveryPriority: 150,
	},
}

// DeliveryFee computes the fee for shipping to region with the given
// method. Pure and deterministic: same inputs always give the same fee.
func DeliveryFee(region string, method DeliveryMethod) float64 {
	base := baseFees[method]
	if band, ok := regionFees[region]; ok {
		if fee, ok := band[method]; ok {
			return fee
		}
		return base
	}
	return base + remoteSurcharge
}
