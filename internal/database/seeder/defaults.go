package seeder

func Defaults(count int) []Seeder {
	return []Seeder{
		ProfileSeeder{Count: count},
	}
}
