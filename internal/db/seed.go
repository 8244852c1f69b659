package db

import (
	"schoolfanta/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// seedPlayer is one draftable player in the seed data
type seedPlayer struct {
	Name  string // Player name
	Role  string // GK, DEF, MID or ATT
	Value int    // Draft cost
}

// seedSchool is one school with its full squad in the seed data
type seedSchool struct {
	Name    string       // School name
	Players []seedPlayer // 15 players: 2 GK, 5 DEF, 5 MID, 3 ATT
}

// seedSchools is the fixed catalog of schools and players
var seedSchools = []seedSchool{
	{
		Name: "Liceo Scientifico Einstein",
		Players: []seedPlayer{
			{"Marco Rossi", domain.RoleGK, 8},
			{"Luca Ferri", domain.RoleGK, 5},
			{"Andrea Colombo", domain.RoleDEF, 10},
			{"Matteo Ricci", domain.RoleDEF, 8},
			{"Davide Moretti", domain.RoleDEF, 7},
			{"Tommaso Conti", domain.RoleDEF, 6},
			{"Simone Marino", domain.RoleDEF, 4},
			{"Federico Greco", domain.RoleMID, 12},
			{"Alessandro Leone", domain.RoleMID, 9},
			{"Lorenzo Mancini", domain.RoleMID, 7},
			{"Nicola Barbieri", domain.RoleMID, 6},
			{"Emanuele Rinaldi", domain.RoleMID, 5},
			{"Giovanni Pellegrini", domain.RoleATT, 15},
			{"Cristian Marchetti", domain.RoleATT, 11},
			{"Paolo Serra", domain.RoleATT, 8},
		},
	},
	{
		Name: "ITIS Galilei",
		Players: []seedPlayer{
			{"Riccardo Rame", domain.RoleGK, 7},
			{"Filippo Bassi", domain.RoleGK, 4},
			{"Gabriele Costa", domain.RoleDEF, 9},
			{"Stefano Fontana", domain.RoleDEF, 8},
			{"Michele Gallo", domain.RoleDEF, 6},
			{"Antonio Longo", domain.RoleDEF, 5},
			{"Francesco Villa", domain.RoleDEF, 4},
			{"Roberto Caruso", domain.RoleMID, 11},
			{"Daniele Martini", domain.RoleMID, 9},
			{"Giacomo Ferrara", domain.RoleMID, 7},
			{"Edoardo Vitale", domain.RoleMID, 6},
			{"Pietro Santoro", domain.RoleMID, 5},
			{"Diego Lombardi", domain.RoleATT, 14},
			{"Samuele Monti", domain.RoleATT, 10},
			{"Alessio Parisi", domain.RoleATT, 7},
		},
	},
	{
		Name: "Liceo Classico Dante",
		Players: []seedPlayer{
			{"Enrico Fabbri", domain.RoleGK, 9},
			{"Carlo Silvestri", domain.RoleGK, 5},
			{"Vincenzo Bernardi", domain.RoleDEF, 10},
			{"Alberto Palmieri", domain.RoleDEF, 7},
			{"Claudio Testa", domain.RoleDEF, 6},
			{"Giorgio Benedetti", domain.RoleDEF, 5},
			{"Sergio Orlando", domain.RoleDEF, 3},
			{"Massimo De Luca", domain.RoleMID, 13},
			{"Fabrizio Rizzi", domain.RoleMID, 8},
			{"Domenico Grasso", domain.RoleMID, 7},
			{"Mauro Cattaneo", domain.RoleMID, 6},
			{"Ivan Mariani", domain.RoleMID, 4},
			{"Bruno D'Angelo", domain.RoleATT, 16},
			{"Aldo Valentini", domain.RoleATT, 12},
			{"Oscar Bianco", domain.RoleATT, 9},
		},
	},
}

// Seed inserts the school and player catalog, skipping rows that already
// exist so it is safe to run more than once
func Seed(db *gorm.DB) error {
	for _, s := range seedSchools {
		school := domain.School{Name: s.Name} // School row to find or create
		// Find by unique name or create it
		if err := db.Where(domain.School{Name: s.Name}).FirstOrCreate(&school).Error; err != nil {
			return err // Abort on the first failure
		}
		// Insert the school's players, skipping existing name+school pairs
		for _, p := range s.Players {
			player := domain.RealPlayer{
				SchoolID: school.ID, // Owning school
				Name:     p.Name,    // Player name
				Role:     p.Role,    // Player role
				Value:    p.Value,   // Draft cost
			}
			// Find by name within the school or create
			if err := db.Where(domain.RealPlayer{Name: p.Name, SchoolID: school.ID}).FirstOrCreate(&player).Error; err != nil {
				return err // Abort on the first failure
			}
		}
		// Log each seeded school
		logrus.WithFields(logrus.Fields{
			"school":  s.Name,         // School name
			"players": len(s.Players), // Player count
		}).Info("Seeded school")
	}
	return nil
}
