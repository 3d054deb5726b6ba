package knowledge

// Default returns the built-in SwiftCart support knowledge.
func Default() Knowledge {
	return Knowledge{
		Profile: Profile{
			AssistantName: "Gem",
			StoreName:     "SwiftCart",
			Title:         "SwiftCart Support",
			Caption:       "Powered by AI",
			Greeting:      "Hi, I'm Gem! Ask me about your order, returns, shipping or payments.",
			Placeholder:   "Ask about your order, returns, or more...",
			SupportEmail:  "support@swiftcart.com",
			SupportPhone:  "+91-987-654-3210",
		},
		Instructions: []string{
			`You are a helpful and friendly customer support assistant for a fictional online store called "SwiftCart".`,
			"Your name is Gem. You are designed to provide quick and accurate information to customers.",
			"Your goal is to answer user questions based ONLY on the information provided below.",
			"If a user asks a question not covered in the information, politely state that you cannot answer and suggest they contact a human agent at support@swiftcart.com or call +91-987-654-3210. Do not invent answers.",
		},
		Context: []string{
			"Our business hours are 9 AM to 6 PM IST, Monday to Friday.",
		},
		Sections: []Section{
			{
				Title: "Orders & Returns",
				Entries: []Entry{
					{Topic: "Order Tracking", Answer: "Customers can track their order on our website: swiftcart.com/tracking. They will need their order number."},
					{Topic: "Return Policy", Answer: "We have a 30-day return policy for items in their original, unused condition with all tags attached. To start a return, visit swiftcart.com/returns."},
					{Topic: "Canceling an Order", Answer: "Orders can be canceled within 2 hours of placement from the 'My Orders' section. After that, the order is processed and cannot be canceled."},
					{Topic: "Changing an Order", Answer: "Unfortunately, we cannot modify an order (like changing size or color) once it has been placed. The customer would need to cancel and re-order within the 2-hour window."},
					{Topic: "Damaged Items", Answer: "If an item arrives damaged, please contact us within 48 hours with photos of the damage at support@swiftcart.com."},
				},
			},
			{
				Title: "Shipping & Delivery",
				Entries: []Entry{
					{Topic: "Shipping Locations", Answer: "We currently ship to all major cities and towns within India. We do not offer international shipping."},
					{Topic: "Shipping Costs", Answer: "Standard shipping is free for all orders over ₹499. For orders below this amount, a flat fee of ₹50 is charged."},
					{Topic: "Delivery Time", Answer: "Standard shipping typically takes 3-5 business days. Express shipping (available in metro cities) takes 1-2 business days for an additional fee of ₹100."},
				},
			},
			{
				Title: "Payments & Pricing",
				Entries: []Entry{
					{Topic: "Payment Methods", Answer: "We accept all major credit cards (Visa, MasterCard), debit cards, UPI (GPay, PhonePe, etc.), and Net Banking."},
					{Topic: "Cash on Delivery (COD)", Answer: "We do not offer a Cash on Delivery option at this time."},
					{Topic: "Discounts", Answer: "Discount codes can be applied at checkout. Only one code can be used per order."},
				},
			},
			{
				Title: "Products & Warranty",
				Entries: []Entry{
					{Topic: "Warranty", Answer: "Electronics come with a 1-year manufacturer's warranty. For claims, please contact the manufacturer directly with your SwiftCart invoice."},
					{Topic: "Out of Stock", Answer: "If an item is out of stock, customers can sign up on the product page to be notified via email when it is available again."},
				},
			},
			{
				Title: "About SwiftCart",
				Entries: []Entry{
					{Topic: "Contact Phone", Answer: "+91-987-654-3210."},
					{Topic: "Email Support", Answer: "support@swiftcart.com"},
					{Topic: "Our Mission", Answer: "SwiftCart is an Indian e-commerce platform based in Kochi, Kerala, dedicated to providing quality products with fast and reliable delivery."},
				},
			},
		},
	}
}
