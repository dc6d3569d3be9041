package models

import "math"

const earthRadiusMeters = 6371008.8

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineMeters 计算两点之间的大圆距离（米）
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

// BoundingBox 返回覆盖以 (lat, lng) 为圆心、radiusMeters 为半径的圆的经纬度范围。
// 靠近两极或跨越 180 度经线时退化为整条经度带。
func BoundingBox(lat, lng, radiusMeters float64) (minLat, maxLat, minLng, maxLng float64) {
	dLat := radiusMeters / earthRadiusMeters * 180 / math.Pi
	minLat = math.Max(-90, lat-dLat)
	maxLat = math.Min(90, lat+dLat)

	cosLat := math.Cos(toRadians(lat))
	if cosLat < 1e-6 || maxLat >= 90 || minLat <= -90 {
		return minLat, maxLat, -180, 180
	}
	dLng := dLat / cosLat
	minLng = lng - dLng
	maxLng = lng + dLng
	if minLng < -180 || maxLng > 180 {
		return minLat, maxLat, -180, 180
	}
	return minLat, maxLat, minLng, maxLng
}
