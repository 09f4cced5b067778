package taxonomy

var catalog = []Category{
	{
		ID:    Strength,
		Name:  "Siłownia",
		Icon:  "🏋️",
		Color: "blue",
		Subcategories: []Subcategory{
			{ID: "klatka", Name: "Klatka piersiowa", Exercises: []string{"Wyciskanie sztangi", "Wyciskanie hantli", "Rozpiętki", "Pompki", "Dipy", "Wyciskanie na skosie", OtherExercise}},
			{ID: "plecy", Name: "Plecy", Exercises: []string{"Martwy ciąg", "Wiosłowanie sztangą", "Podciąganie", "Ściąganie drążka", "Wiosłowanie hantlem", "Pullover", OtherExercise}},
			{ID: "barki", Name: "Barki", Exercises: []string{"Wyciskanie military", "Wznosy bokiem", "Wznosy przodem", "Face pulls", "Arnoldki", "Odwrotne rozpiętki", OtherExercise}},
			{ID: "biceps", Name: "Biceps", Exercises: []string{"Uginanie sztangi", "Uginanie hantli", "Młotki", "Uginanie na modlitewniku", "Koncentracja", "Uginanie na wyciągu", OtherExercise}},
			{ID: "triceps", Name: "Triceps", Exercises: []string{"Francuskie wyciskanie", "Pompki wąskie", "Prostowanie na wyciągu", "Wyciskanie wąskim chwytem", "Kickback", OtherExercise}},
			{ID: "nogi", Name: "Nogi", Exercises: []string{"Przysiad", "Wykroki", "Prasa", "Wyprost nóg", "Uginanie nóg", "Hip thrust", "Przysiad bułgarski", "Martwy ciąg rumuński", OtherExercise}},
			{ID: "brzuch", Name: "Brzuch", Exercises: []string{"Plank", "Crunch", "Unoszenie nóg", "Russian twist", "Dead bug", "Wznosy nóg w zwisie", OtherExercise}},
			{ID: "inne_silowe", Name: "Inne", Exercises: []string{OtherExercise}},
		},
	},
	{
		ID:    Cardio,
		Name:  "Cardio",
		Icon:  "🏃",
		Color: "green",
		Subcategories: []Subcategory{
			{ID: "bieganie", Name: "Bieganie", Exercises: []string{"Bieg na zewnątrz", "Bieżnia", "Interwały", "Tempo run", OtherExercise}},
			{ID: "rower", Name: "Rower", Exercises: []string{"Rower stacjonarny", "Rower outdoor", "Spinning", OtherExercise}},
			{ID: "plywanie", Name: "Pływanie", Exercises: []string{"Kraul", "Żabka", "Grzbiet", "Dowolnie", OtherExercise}},
			{ID: "inne_cardio", Name: "Inne cardio", Exercises: []string{"Orbitrek", "Wioślarnia", "Skakanka", "HIIT", "Spacer", OtherExercise}},
		},
	},
	{
		ID:    Mobility,
		Name:  "Mobilność",
		Icon:  "🧘",
		Color: "purple",
		Subcategories: []Subcategory{
			{ID: "yoga", Name: "Yoga", Exercises: []string{"Vinyasa", "Hatha", "Power yoga", "Yin yoga", OtherExercise}},
			{ID: "stretching", Name: "Stretching", Exercises: []string{"Rozciąganie ogólne", "Góra ciała", "Dół ciała", "Dynamiczne", OtherExercise}},
			{ID: "foam_rolling", Name: "Foam rolling", Exercises: []string{"Roller plecy", "Roller nogi", "Piłeczka", OtherExercise}},
		},
	},
}
