package topic

var builtinCategories = []Category{
	{Name: "AI & Machine Learning", Topics: []string{
		"AI Coding Agents",
		"The Economics of Running Open-Weight Models",
		"Why Evaluation Is the Real Bottleneck in Applied AI",
		"Small Language Models on the Edge",
		"What Retrieval-Augmented Generation Gets Wrong",
	}},
	{Name: "Developer Tools", Topics: []string{
		"DevOps Automation",
		"The Future of React",
		"WebAssembly Beyond the Browser",
		"Rust vs Go for Backend Services",
		"The Quiet Return of the Monolith",
	}},
	{Name: "Cloud & Infrastructure", Topics: []string{
		"Serverless Architecture After the Hype",
		"Edge Computing and the Latency Budget",
		"The Hidden Cost of Multi-Cloud",
		"Platform Engineering as a Product",
	}},
	{Name: "Security", Topics: []string{
		"Cybersecurity in 2025",
		"Supply Chain Attacks and the Open Source Commons",
		"Passkeys and the Slow Death of the Password",
	}},
	{Name: "Future Tech", Topics: []string{
		"Quantum Computing Reality Check",
		"The No-Code Revolution",
		"Green Tech and the Energy Cost of Compute",
	}},
	{Name: "Tech Industry", Topics: []string{
		"Tech Layoffs and the New Hiring Playbook",
		"Remote Work Five Years Later",
		"Why Developer Relations Keeps Getting Reinvented",
	}},
}
