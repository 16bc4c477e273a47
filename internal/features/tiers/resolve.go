package tiers

import "sort"

// DefaultTiers используются, если в БД нет ни одного активного уровня.
// У них ID = 0, в usuarios.nivel_id они сохраняются как NULL.
var DefaultTiers = []Tier{
	{Name: "Bronce", MinPoints: 0, DisplayOrder: 1, Active: true},
	{Name: "Plata", MinPoints: 500, DisplayOrder: 2, Active: true},
	{Name: "Oro", MinPoints: 2000, DisplayOrder: 3, Active: true},
}

// activeSorted возвращает активные уровни по возрастанию порога.
// При равных порогах раньше идёт уровень с меньшим порядком отображения.
func activeSorted(all []Tier) []Tier {
	out := make([]Tier, 0, len(all))
	for _, t := range all {
		if t.Active {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		out = append(out, DefaultTiers...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MinPoints != out[j].MinPoints {
			return out[i].MinPoints < out[j].MinPoints
		}
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}

// Resolve выбирает уровень с наибольшим порогом, не превышающим points.
// Если не подходит ни один, возвращается первый по порядку отображения.
func Resolve(all []Tier, points int64) Tier {
	sorted := activeSorted(all)
	if sorted[0].MinPoints > points {
		return firstByOrder(sorted)
	}
	current := sorted[0]
	for _, t := range sorted[1:] {
		if t.MinPoints > points {
			break
		}
		current = t
	}
	return current
}

func firstByOrder(list []Tier) Tier {
	first := list[0]
	for _, t := range list[1:] {
		if t.DisplayOrder < first.DisplayOrder {
			first = t
		}
	}
	return first
}

// ProgressFor считает текущий уровень и расстояние до следующего.
func ProgressFor(all []Tier, points int64) Progress {
	sorted := activeSorted(all)
	p := Progress{Current: Resolve(sorted, points)}
	for i := range sorted {
		if sorted[i].MinPoints > points {
			next := sorted[i]
			p.Next = &next
			p.PointsToNext = next.MinPoints - points
			break
		}
	}
	return p
}
