package document

func sampleDocument() Document {
	return Document{
		Agent: Agent{Host: "0.0.0.0", Port: 8000},
		Servers: []Server{
			{Serial: "A1", Port: 7000, Name: "alpha"},
			{Serial: "B2", Port: 7001, Name: "beta"},
		},
		Proxies: []Proxy{
			{Origin: "10.0.0.5:80", Port: 9002, Name: "kitchen", Location: "Oslo", Alias: "k", ReconnectInterval: 10},
			{Origin: "10.0.0.6:80", Port: 9000, Name: "garage", Location: "Bergen", Alias: "g", ReconnectInterval: 5},
			{Origin: "10.0.0.7:80", Port: 9001, Name: "attic", Location: "Alta", Alias: "a", AutoConnect: true},
		},
		FileShare: FileShare{
			Server:            "nas.local",
			Username:          "sync",
			Password:          "secret",
			Service:           "logs",
			Root:              "/",
			IntervalInSeconds: 5,
			ReconnectInterval: 10,
			Enabled:           true,
		},
	}
}
