package catalog

var locations = []Location{
	{
		Name:        "School",
		Description: "A place of learning",
		Category:    Education,
		Roles:       []string{"Teacher", "Student", "Janitor", "Principal", "Lunch Cook", "School Nurse"},
	},
	{
		Name:        "Hospital",
		Description: "A medical facility",
		Category:    Public,
		Roles:       []string{"Doctor", "Nurse", "Patient", "Pharmacist", "Director", "Orderly"},
	},
	{
		Name:        "Restaurant",
		Description: "An everyday eatery",
		Category:    Business,
		Roles:       []string{"Chef", "Waiter", "Cashier", "Customer", "Owner", "Dishwasher"},
	},
	{
		Name:        "Shopping Mall",
		Description: "A large shopping center",
		Category:    Business,
		Roles:       []string{"Salesperson", "Shopper", "Security Guard", "Cleaner", "Manager", "Cashier"},
	},
	{
		Name:        "Movie Theater",
		Description: "Where films are shown",
		Category:    Entertainment,
		Roles:       []string{"Projectionist", "Moviegoer", "Usher", "Popcorn Seller", "Ticket Clerk", "Manager"},
	},
	{
		Name:        "Airport",
		Description: "A hub for air travel",
		Category:    Transportation,
		Roles:       []string{"Pilot", "Flight Attendant", "Passenger", "Customs Officer", "Baggage Handler", "Air Traffic Controller"},
	},
	{
		Name:        "Train Station",
		Description: "A railway terminal",
		Category:    Transportation,
		Roles:       []string{"Conductor", "Passenger", "Ticket Inspector", "Station Master", "Vendor", "Cleaner"},
	},
	{
		Name:        "University",
		Description: "Higher education campus",
		Category:    Education,
		Roles:       []string{"Professor", "Undergraduate", "Dean", "Librarian", "Lab Assistant", "Exchange Student"},
	},
	{
		Name:        "Bank",
		Description: "A financial institution",
		Category:    Business,
		Roles:       []string{"Teller", "Branch Manager", "Customer", "Security Guard", "Loan Officer", "Robber"},
	},
	{
		Name:        "Beach",
		Description: "A seaside resort",
		Category:    Entertainment,
		Roles:       []string{"Lifeguard", "Sunbather", "Ice Cream Vendor", "Surfer", "Photographer", "Beach Cleaner"},
	},
	{
		Name:        "Casino",
		Description: "A gambling house",
		Category:    Entertainment,
		Roles:       []string{"Dealer", "Gambler", "Pit Boss", "Bartender", "Bouncer", "Card Counter"},
	},
	{
		Name:        "Circus",
		Description: "A traveling big-top show",
		Category:    Entertainment,
		Roles:       []string{"Ringmaster", "Clown", "Acrobat", "Animal Tamer", "Juggler", "Spectator"},
	},
	{
		Name:        "Cruise Ship",
		Description: "A floating holiday resort",
		Category:    Transportation,
		Roles:       []string{"Captain", "Passenger", "Deckhand", "Entertainer", "Chef", "Cabin Steward"},
	},
	{
		Name:        "Police Station",
		Description: "Local law enforcement office",
		Category:    Public,
		Roles:       []string{"Detective", "Patrol Officer", "Suspect", "Desk Sergeant", "Lawyer", "Journalist"},
	},
	{
		Name:        "Fire Station",
		Description: "Home of the fire brigade",
		Category:    Public,
		Roles:       []string{"Firefighter", "Fire Chief", "Dispatcher", "Paramedic", "Mechanic", "Volunteer"},
	},
	{
		Name:        "Supermarket",
		Description: "A grocery store",
		Category:    Business,
		Roles:       []string{"Cashier", "Shopper", "Butcher", "Shelf Stocker", "Store Manager", "Delivery Driver"},
	},
	{
		Name:        "Hotel",
		Description: "Lodging for travelers",
		Category:    Business,
		Roles:       []string{"Receptionist", "Guest", "Bellboy", "Housekeeper", "Concierge", "Hotel Manager"},
	},
	{
		Name:        "Library",
		Description: "A public book collection",
		Category:    Education,
		Roles:       []string{"Librarian", "Reader", "Archivist", "Student", "Volunteer", "Security Guard"},
	},
	{
		Name:        "Museum",
		Description: "Exhibits of art and history",
		Category:    Education,
		Roles:       []string{"Curator", "Visitor", "Tour Guide", "Restorer", "Security Guard", "Gift Shop Clerk"},
	},
	{
		Name:        "Amusement Park",
		Description: "Rides and attractions",
		Category:    Entertainment,
		Roles:       []string{"Ride Operator", "Visitor", "Mascot", "Food Vendor", "Maintenance Worker", "Ticket Seller"},
	},
	{
		Name:        "Zoo",
		Description: "A park of living animals",
		Category:    Public,
		Roles:       []string{"Zookeeper", "Visitor", "Veterinarian", "Tour Guide", "Photographer", "Souvenir Seller"},
	},
	{
		Name:        "Gym",
		Description: "A fitness center",
		Category:    Business,
		Roles:       []string{"Personal Trainer", "Member", "Receptionist", "Yoga Instructor", "Cleaner", "Bodybuilder"},
	},
	{
		Name:        "Theater",
		Description: "A stage for live performance",
		Category:    Entertainment,
		Roles:       []string{"Actor", "Director", "Audience Member", "Stagehand", "Usher", "Playwright"},
	},
	{
		Name:        "Subway",
		Description: "An underground metro line",
		Category:    Transportation,
		Roles:       []string{"Driver", "Commuter", "Ticket Inspector", "Busker", "Cleaner", "Tourist"},
	},
	{
		Name:        "Temple",
		Description: "A place of worship",
		Category:    Public,
		Roles:       []string{"Monk", "Worshipper", "Caretaker", "Tour Guide", "Novice", "Flower Seller"},
	},
	{
		Name:        "Night Market",
		Description: "An open-air evening bazaar",
		Category:    Business,
		Roles:       []string{"Street Food Cook", "Shopper", "Stall Owner", "Musician", "Pickpocket", "Tourist"},
	},
	{
		Name:        "Football Stadium",
		Description: "Home ground of the local club",
		Category:    Entertainment,
		Roles:       []string{"Striker", "Goalkeeper", "Referee", "Supporter", "Commentator", "Hot Dog Vendor"},
	},
	{
		Name:        "Ferry Pier",
		Description: "Boats across the river",
		Category:    Transportation,
		Roles:       []string{"Ferry Captain", "Commuter", "Ticket Seller", "Deckhand", "Fisherman", "Street Vendor"},
	},
}
