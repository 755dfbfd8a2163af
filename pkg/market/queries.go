package market

// GraphQL documents posted to the Bitquery streaming endpoint. All three
// target the Polygon (matic) network.

const topMarketsQuery = `
query PolygonTopMarkets($count: Int) {
    EVM(network: matic, dataset: realtime) {
        DEXTradeByTokens(
            limit: {count: $count}
            orderBy: {descendingByField: "volume"}
        ) {
            Trade {
                Currency {
                    Symbol
                    SmartContract
                }
                recent_price: PriceInUSD(maximum: Block_Number)
            }
            volume: sum(of: Trade_Side_AmountInUSD)
            trades: count
        }
    }
}
`

const liquidityEventsQuery = `
query PolygonLiquidityEvents {
    EVM(network: matic) {
        DEXPoolEvents(
            limit: {count: 200}
            orderBy: {descending: Block_Time}
        ) {
            Block {
                Time
                Number
            }
            PoolEvent {
                AtoBPrice
                BtoAPrice
                Liquidity {
                    AmountCurrencyA
                    AmountCurrencyB
                }
                Pool {
                    CurrencyA {
                        Symbol
                        SmartContract
                    }
                    CurrencyB {
                        Symbol
                        SmartContract
                    }
                    PoolId
                    SmartContract
                }
                Dex {
                    ProtocolName
                }
            }
            Transaction {
                Hash
            }
        }
    }
}
`

const poolPricesQuery = `
query PolygonPoolPrices($count: Int) {
    EVM(network: matic) {
        DEXPools(
            limit: {count: $count}
            orderBy: {descending: Block_Time}
        ) {
            Block {
                Time
            }
            Price {
                AtoBPrice
                BtoAPrice
                Pool {
                    CurrencyA {
                        Symbol
                        SmartContract
                    }
                    CurrencyB {
                        Symbol
                        SmartContract
                    }
                    SmartContract
                }
            }
            Dex {
                ProtocolName
            }
        }
    }
}
`
